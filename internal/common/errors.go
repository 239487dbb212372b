// Package common содержит общие sentinel-ошибки сервера MyPass.
// Сравнение выполняется через errors.Is, детали добавляются обёрткой fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Ошибки входных данных: пользователь исправляет ввод и повторяет запрос.
	ErrValidation = errors.New("validation error")

	// Ошибки идентификации и владения. Наружу отдаются как общий отказ.
	ErrAuthentication = errors.New("invalid credentials")
	ErrAuthorization  = errors.New("access denied")

	// Ошибки репозитория.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Ошибки целостности данных (шифрование полей).
	ErrEncryption = errors.New("encryption failed")
	ErrDecryption = errors.New("decryption failed")

	ErrInternal = errors.New("internal error")
)
