package repo

// TokenStore хранит сессионный токен vaultctl между запусками.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}
