package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations - количество итераций PBKDF2 (100,000)
	PBKDF2Iterations = 100_000
	// DerivedKeySize - длина производного ключа в байтах
	DerivedKeySize = 32
	// SaltSize - размер соли в байтах
	SaltSize = 32
)

// DeriveKey derives a 32-byte key from a passphrase, email and salt.
// The same inputs always yield the same key: signup encrypts with it and a
// later login must be able to decrypt.
//
// The raw salt is first combined with the email via HKDF-SHA256 so two
// accounts sharing a passphrase never share a key, then the passphrase is
// stretched with PBKDF2-SHA256.
func DeriveKey(passphrase, email, salt string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}
	if salt == "" {
		return nil, fmt.Errorf("salt cannot be empty")
	}

	// Комбинируем соль и email через HKDF
	combined := make([]byte, DerivedKeySize)
	kdf := hkdf.New(sha256.New, []byte(email), []byte(salt), nil)
	if _, err := io.ReadFull(kdf, combined); err != nil {
		return nil, fmt.Errorf("failed to combine salt: %w", err)
	}

	// Растягиваем passphrase через PBKDF2
	key := pbkdf2.Key([]byte(passphrase), combined, PBKDF2Iterations, DerivedKeySize, sha256.New)
	return key, nil
}

// RandomHex генерирует n криптографически случайных байт и возвращает их в hex.
// Используется для солей аккаунта и случайных идентификаторов.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// RandomSaltHex генерирует случайную соль стандартного размера в hex.
func RandomSaltHex() (string, error) {
	return RandomHex(SaltSize)
}
