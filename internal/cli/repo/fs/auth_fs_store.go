package fs

import (
	"MyPass/internal/cli/repo"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// AuthFSStore — файловое хранилище сессионного токена vaultctl.
// Пустой Path — файл auth_token в пользовательском конфиг-каталоге.
type AuthFSStore struct {
	Path string
}

var _ repo.TokenStore = AuthFSStore{}

// ErrNoToken — токен ещё не сохранён (пользователь не выполнял login).
var ErrNoToken = errors.New("not logged in")

func defaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "MyPass", "auth_token"), nil
}

func (s AuthFSStore) path() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	return defaultTokenPath()
}

// Save сохраняет auth‑токен в файл с правами 0600.
func (s AuthFSStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	p, err := s.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	p, err := s.path()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// Clear удаляет файл токена. Отсутствие файла — не ошибка.
func (s AuthFSStore) Clear() error {
	p, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
