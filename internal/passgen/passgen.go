// Package passgen генерирует случайные пароли.
package passgen

import (
	"MyPass/internal/common"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

type Complexity string

const (
	Low    Complexity = "low"
	Medium Complexity = "medium"
	High   Complexity = "high"
)

const (
	DefaultLength = 8
	MaxLength     = 128

	letters     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits      = "0123456789"
	punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Options — параметры генерации. Нулевые значения: длина 8, сложность medium.
type Options struct {
	Length     int
	Complexity Complexity
}

// ParseComplexity разбирает уровень сложности без учёта регистра.
func ParseComplexity(s string) (Complexity, error) {
	switch c := Complexity(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return Medium, nil
	case Low, Medium, High:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown complexity %q", common.ErrValidation, s)
}

// Pool возвращает алфавит для уровня сложности.
func Pool(c Complexity) string {
	switch c {
	case Low:
		return letters
	case High:
		return letters + digits + punctuation
	}
	return letters + digits
}

// Generate возвращает пароль из криптографически стойкого источника.
func Generate(opts Options) (string, error) {
	n := opts.Length
	if n == 0 {
		n = DefaultLength
	}
	if n < 1 || n > MaxLength {
		return "", fmt.Errorf("%w: length must be between 1 and %d", common.ErrValidation, MaxLength)
	}
	c, err := ParseComplexity(string(opts.Complexity))
	if err != nil {
		return "", err
	}

	pool := Pool(c)
	max := big.NewInt(int64(len(pool)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
		}
		b.WriteByte(pool[idx.Int64()])
	}
	return b.String(), nil
}
