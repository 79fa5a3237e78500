package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// NonceSize - размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// TagSize - размер authentication tag для AES-GCM
	TagSize = 16
	// SymmetricKeySize - длина симметричного ключа (AES-256)
	SymmetricKeySize = 32
)

// ErrDecryption is returned when a ciphertext fails authentication.
// A wrong key must produce this error, never a plausible-looking plaintext.
var ErrDecryption = errors.New("decryption failed: authentication failed or corrupted data")

// Envelope is the wire format for a symmetrically encrypted message.
// All fields are hex-encoded. The tag is kept separate from the body so the
// envelope survives JSON round-trips between installations unchanged.
type Envelope struct {
	IV string `json:"iv"` // nonce (12 bytes)
	T  string `json:"t"`  // GCM authentication tag (16 bytes)
	D  string `json:"d"`  // ciphertext body
	AD string `json:"ad"` // additional authenticated data (may be empty)
}

// GenerateSymmetricKey возвращает случайный 32-байтовый ключ для AES-256-GCM.
func GenerateSymmetricKey() ([]byte, error) {
	key := make([]byte, SymmetricKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}
	return key, nil
}

// EncryptSymmetric шифрует данные с использованием AES-256-GCM.
// additionalData аутентифицируется, но не шифруется.
func EncryptSymmetric(key, plaintext, additionalData []byte) (*Envelope, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Генерируем случайный nonce
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal добавляет authentication tag в конец, отрезаем его в отдельное поле
	sealed := aesGCM.Seal(nil, nonce, plaintext, additionalData)
	body := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	return &Envelope{
		IV: hex.EncodeToString(nonce),
		T:  hex.EncodeToString(tag),
		D:  hex.EncodeToString(body),
		AD: hex.EncodeToString(additionalData),
	}, nil
}

// DecryptSymmetric дешифрует envelope, зашифрованный EncryptSymmetric.
// Возвращает ErrDecryption если ключ не подходит или данные повреждены.
func DecryptSymmetric(key []byte, envelope *Envelope) ([]byte, error) {
	if envelope == nil {
		return nil, fmt.Errorf("envelope is nil")
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, err := hex.DecodeString(envelope.IV)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	tag, err := hex.DecodeString(envelope.T)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tag: %w", err)
	}
	body, err := hex.DecodeString(envelope.D)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	additionalData, err := hex.DecodeString(envelope.AD)
	if err != nil {
		return nil, fmt.Errorf("failed to decode additional data: %w", err)
	}

	// Открываем ciphertext + tag одним буфером, как ожидает GCM
	sealed := make([]byte, 0, len(body)+len(tag))
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	plaintext, err := aesGCM.Open(nil, nonce, sealed, additionalData)
	if err != nil {
		// Не возвращаем подробности: неверный ключ и битые данные неразличимы
		return nil, ErrDecryption
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != SymmetricKeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", SymmetricKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aesGCM, nil
}
