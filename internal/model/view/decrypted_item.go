package view

import (
	"MyPass/internal/model"
	"strings"
	"time"
)

// DecryptedItem — DTO для отображения записи с расшифрованными полями.
type DecryptedItem struct {
	ID        int64
	Type      model.ItemType
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Fields    []DecryptedField
}

// DecryptedField — расшифрованное поле. Unreadable выставляется, если значение не удалось расшифровать;
// Value в этом случае пустое.
type DecryptedField struct {
	Key        string
	Value      string
	Unreadable bool
}

// Field возвращает поле по ключу.
func (d DecryptedItem) Field(key string) (DecryptedField, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return DecryptedField{}, false
}

// Masked возвращает копию записи со скрытыми значениями полей.
func (d DecryptedItem) Masked() DecryptedItem {
	out := d
	out.Fields = make([]DecryptedField, len(d.Fields))
	for i, f := range d.Fields {
		f.Value = Mask(f.Value)
		out.Fields[i] = f
	}
	return out
}

// Mask скрывает чувствительное значение: по "****" на каждые четыре символа.
func Mask(s string) string {
	return strings.Repeat("****", len([]rune(s))/4)
}
