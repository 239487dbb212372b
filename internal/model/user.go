package model

import "time"

// User — владелец хранилища. Пароль хранится только в виде верификатора.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"not null;uniqueIndex;size:255"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Секретные вопросы в порядке регистрации
	SecurityQuestions []SecurityQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SecurityQuestion — секретный вопрос пользователя и верификатор ответа.
type SecurityQuestion struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"not null;index;uniqueIndex:idx_question_user_pos,priority:1"`

	// Position фиксирует порядок цепочки восстановления
	Position   int    `gorm:"not null;uniqueIndex:idx_question_user_pos,priority:2"`
	Prompt     string `gorm:"not null;size:255"`
	AnswerHash string `gorm:"not null" json:"-"`
}
