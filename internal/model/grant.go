package model

import "time"

// RecoveryGrant — использованный допуск на сброс мастер-пароля.
// Запись создаётся в момент сброса, повторное использование того же ID невозможно.
type RecoveryGrant struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     int64     `gorm:"not null;index"`
	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt time.Time `gorm:"autoCreateTime"`
}
