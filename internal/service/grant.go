package service

import (
	"MyPass/internal/repo"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultGrantTTL — время жизни допуска на сброс пароля после успешного восстановления.
const DefaultGrantTTL = 10 * time.Minute

const grantPurpose = "recovery"

// ErrInvalidGrant — допуск не прошёл проверку подписи, срока или назначения.
var ErrInvalidGrant = errors.New("invalid recovery grant")

// GrantClaims — утверждения допуска восстановления.
type GrantClaims struct {
	jwt.RegisteredClaims
	UserID  int64  `json:"uid"`
	Purpose string `json:"purpose"`
}

// GrantIssuer выпускает и проверяет короткоживущие допуски на сброс мастер-пароля.
// Ключ подписи отделён от ключа сессионных токенов.
type GrantIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewGrantIssuer создаёт выпускающего. ttl <= 0 — значение по умолчанию.
func NewGrantIssuer(secret string, ttl time.Duration) *GrantIssuer {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	k := sha256.Sum256([]byte(secret + ":recovery-grant"))
	return &GrantIssuer{key: k[:], ttl: ttl, now: time.Now}
}

// Issue подписывает допуск для пользователя.
func (g *GrantIssuer) Issue(userID int64) (string, repo.Grant, error) {
	now := g.now()
	grant := repo.Grant{ID: uuid.NewString(), UserID: userID, ExpiresAt: now.Add(g.ttl)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, GrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        grant.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(grant.ExpiresAt),
		},
		UserID:  userID,
		Purpose: grantPurpose,
	})
	s, err := token.SignedString(g.key)
	if err != nil {
		return "", repo.Grant{}, err
	}
	return s, grant, nil
}

// Parse проверяет подпись, срок и назначение допуска.
func (g *GrantIssuer) Parse(tokenString string) (repo.Grant, error) {
	claims := &GrantClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return g.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(g.now))
	if err != nil || !token.Valid {
		return repo.Grant{}, ErrInvalidGrant
	}
	if claims.Purpose != grantPurpose || claims.ID == "" || claims.UserID == 0 || claims.ExpiresAt == nil {
		return repo.Grant{}, ErrInvalidGrant
	}
	return repo.Grant{ID: claims.ID, UserID: claims.UserID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
