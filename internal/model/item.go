package model

import "time"

// VaultItem — серверная модель элемента хранилища пользователя.
type VaultItem struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"not null;index"` // ссылка на users.id

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Type ItemType `gorm:"not null;size:32"`
	Name string   `gorm:"not null;size:120"`

	// Поля в порядке добавления
	Fields []VaultField `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// VaultField — пара ключ/значение элемента. Value всегда содержит шифртекст.
type VaultField struct {
	ID          int64  `gorm:"primaryKey"`
	VaultItemID int64  `gorm:"not null;index;uniqueIndex:idx_field_item_key,priority:1"`
	Position    int    `gorm:"not null"`
	Key         string `gorm:"not null;size:120;uniqueIndex:idx_field_item_key,priority:2"`
	Value       string `gorm:"not null;type:text"`
}
