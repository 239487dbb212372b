package crypto

import (
	"MyPass/internal/common"
	"encoding/base64"
	"errors"
	"testing"
)

func newTestBox(t *testing.T) *Box {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	b, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNew_InvalidKeyLen(t *testing.T) {
	if _, err := New([]byte("short")); err == nil {
		t.Fatalf("expected error for invalid key length")
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	b := newTestBox(t)
	for _, p := range []string{"", "a", "secret1", "пароль", string(make([]byte, 4096))} {
		ct, err := b.EncryptString(p)
		if err != nil {
			t.Fatalf("encrypt %q: %v", p, err)
		}
		got, err := b.DecryptString(ct)
		if err != nil {
			t.Fatalf("decrypt %q: %v", p, err)
		}
		if got != p {
			t.Fatalf("round-trip failed: want %q got %q", p, got)
		}
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	b := newTestBox(t)
	c1, _ := b.EncryptString("same")
	c2, _ := b.EncryptString("same")
	if c1 == c2 {
		t.Fatalf("equal plaintexts must not give equal ciphertexts")
	}
}

// Изменение любого байта шифртекста должно приводить к ошибке, а не к другому открытому тексту.
func TestDecrypt_TamperDetected(t *testing.T) {
	b := newTestBox(t)
	ct, err := b.EncryptString("secret1")
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := base64.StdEncoding.DecodeString(ct)
	for i := range raw {
		mod := append([]byte(nil), raw...)
		mod[i] ^= 0x01
		_, err := b.Decrypt(base64.StdEncoding.EncodeToString(mod))
		if !errors.Is(err, common.ErrDecryption) {
			t.Fatalf("byte %d: expected ErrDecryption, got %v", i, err)
		}
	}
}

func TestDecrypt_WrongKeyAndMalformed(t *testing.T) {
	b := newTestBox(t)
	other := newTestBox(t)
	ct, _ := b.EncryptString("hello")

	if _, err := other.Decrypt(ct); !errors.Is(err, common.ErrDecryption) {
		t.Fatalf("wrong key: expected ErrDecryption, got %v", err)
	}
	if _, err := b.Decrypt("%%% not base64"); !errors.Is(err, common.ErrDecryption) {
		t.Fatalf("malformed: expected ErrDecryption, got %v", err)
	}
	if _, err := b.Decrypt(base64.StdEncoding.EncodeToString([]byte{1, 2, 3})); !errors.Is(err, common.ErrDecryption) {
		t.Fatalf("short: expected ErrDecryption, got %v", err)
	}
}
