package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
)

// KeySource описывает, откуда взять ключ шифрования полей.
// Источники проверяются по порядку: Key, Passphrase+Salt, File.
type KeySource struct {
	Key        string // hex или base64 от 32 байт
	Passphrase string
	Salt       string
	File       string
}

// ErrNoKeySource — ни один источник ключа не задан.
var ErrNoKeySource = errors.New("no vault key source configured")

// GenerateKey возвращает новый случайный ключ.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveKey детерминированно получает ключ из парольной фразы (argon2id).
func DeriveKey(passphrase string, salt []byte) []byte {
	// 1 проход, 64MB памяти, 4 потока
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, KeyLen)
}

// ParseKey разбирает ключ в hex или base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := hex.DecodeString(s); err == nil && len(b) == KeyLen {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == KeyLen {
		return b, nil
	}
	return nil, errors.New("invalid key: expected 32 bytes in hex or base64")
}

// LoadKey возвращает ключ из первого заданного источника.
func LoadKey(src KeySource) ([]byte, error) {
	switch {
	case src.Key != "":
		return ParseKey(src.Key)
	case src.Passphrase != "":
		if len(src.Salt) < 8 {
			return nil, errors.New("key salt must be at least 8 bytes")
		}
		return DeriveKey(src.Passphrase, []byte(src.Salt)), nil
	case src.File != "":
		return LoadOrCreateKeyFile(src.File)
	}
	return nil, ErrNoKeySource
}

// LoadOrCreateKeyFile загружает ключ из файла или создаёт новый случайный.
// Потеря файла делает все сохранённые значения нечитаемыми.
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	if b, err := os.ReadFile(path); err == nil {
		key, err := ParseKey(string(b))
		if err != nil {
			return nil, fmt.Errorf("key file %s: %w", path, err)
		}
		return key, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	// записываем с ограниченными правами доступа
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
