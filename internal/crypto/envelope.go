package crypto

import (
	"encoding/json"
	"fmt"
)

// EncryptToString шифрует plaintext и возвращает envelope как JSON строку —
// формат, в котором шифротексты ходят по проводу и лежат в хранилищах.
func EncryptToString(key, plaintext, additionalData []byte) (string, error) {
	env, err := EncryptSymmetric(key, plaintext, additionalData)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return string(data), nil
}

// DecryptFromString разбирает envelope из JSON строки и расшифровывает его.
// Битый JSON неотличим для вызывающего от битого шифротекста.
func DecryptFromString(key []byte, s string) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, ErrDecryption
	}
	return DecryptSymmetric(key, &env)
}
