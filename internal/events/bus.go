// Package events — шина уведомлений уровня представления.
// Хранилище о ней не знает: события публикуют только HTTP-хендлеры.
package events

import (
	"sync"
	"time"
)

const (
	ItemCreated      = "vault_item_created"
	ItemDeleted      = "vault_item_deleted"
	PasswordRevealed = "password_revealed"
)

// Event — уведомление о действии пользователя. Значения полей в событие не попадают.
type Event struct {
	Name   string    `json:"name"`
	UserID int64     `json:"user_id"`
	ItemID int64     `json:"item_id,omitempty"`
	At     time.Time `json:"at"`
}

// Handler получает события синхронно в горутине публикующего.
type Handler func(Event)

// Bus — publish/subscribe.
type Bus interface {
	Publish(e Event)
	Subscribe(h Handler) (unsubscribe func())
}

// MemoryBus — потокобезопасная шина в памяти процесса.
type MemoryBus struct {
	mu   sync.RWMutex
	next int
	subs map[int]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]Handler)}
}

var _ Bus = (*MemoryBus)(nil)

func (b *MemoryBus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}

func (b *MemoryBus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}
