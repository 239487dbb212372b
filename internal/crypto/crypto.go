// Package crypto — граница шифрования значений полей хранилища (AES-256-GCM).
package crypto

import (
	"MyPass/internal/common"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// KeyLen — длина ключа для AES‑256 (в байтах).
const KeyLen = 32

// Box шифрует и расшифровывает значения одним ключом процесса.
// После создания Box только читается и безопасен для конкурентного использования.
type Box struct {
	aead cipher.AEAD
}

// New создаёт Box для ключа длиной KeyLen.
func New(key []byte) (*Box, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("invalid key length: %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Box{aead: gcm}, nil
}

// Encrypt шифрует plain со случайным nonce и возвращает base64(nonce || шифртекст).
func (b *Box) Encrypt(plain []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}
	out := b.aead.Seal(nonce, nonce, plain, nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt расшифровывает значение, полученное из Encrypt.
// Любая порча, чужой ключ или неверный формат дают common.ErrDecryption.
func (b *Box) Decrypt(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", common.ErrDecryption)
	}
	ns := b.aead.NonceSize()
	if len(raw) < ns+b.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}
	plain, err := b.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", common.ErrDecryption)
	}
	return plain, nil
}

// EncryptString — удобная обёртка для строк.
func (b *Box) EncryptString(s string) (string, error) {
	return b.Encrypt([]byte(s))
}

// DecryptString — удобная обёртка для строк.
func (b *Box) DecryptString(ct string) (string, error) {
	p, err := b.Decrypt(ct)
	if err != nil {
		return "", err
	}
	return string(p), nil
}
