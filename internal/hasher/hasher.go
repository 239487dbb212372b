// Package hasher реализует одностороннее хеширование мастер-паролей и ответов
// на секретные вопросы (bcrypt).
package hasher

import (
	"MyPass/internal/common"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// maxSecretLen — bcrypt учитывает только первые 72 байта.
const maxSecretLen = 72

// Hasher хеширует и проверяет секреты.
type Hasher struct {
	cost int
	// dummy — верификатор той же стоимости, что и настоящие; выравнивает время,
	// когда пользователь не найден.
	dummy []byte
}

// New создаёт Hasher с заданной стоимостью bcrypt. Некорректная стоимость заменяется на DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("mypass-dummy-secret"), cost)
	if err != nil {
		panic(fmt.Sprintf("hasher: dummy verifier: %v", err))
	}
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash возвращает верификатор секрета.
func (h *Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: empty secret", common.ErrValidation)
	}
	if len(secret) > maxSecretLen {
		return "", fmt.Errorf("%w: secret is longer than %d bytes", common.ErrValidation, maxSecretLen)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: hash: %v", common.ErrInternal, err)
	}
	return string(b), nil
}

// Verify сравнивает секрет с верификатором. Сравнение в bcrypt выполняется за постоянное время.
func (h *Hasher) Verify(secret, verifier string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(secret)) == nil
}

// VerifyDummy тратит столько же времени, сколько настоящая проверка, и всегда возвращает false.
func (h *Hasher) VerifyDummy(secret string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(secret))
	return false
}

// NormalizeAnswer приводит ответ на секретный вопрос к каноническому виду.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// HashAnswer хеширует нормализованный ответ.
func (h *Hasher) HashAnswer(answer string) (string, error) {
	return h.Hash(NormalizeAnswer(answer))
}

// VerifyAnswer проверяет нормализованный ответ.
func (h *Hasher) VerifyAnswer(answer, verifier string) bool {
	return h.Verify(NormalizeAnswer(answer), verifier)
}
