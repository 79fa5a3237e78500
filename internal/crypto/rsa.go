package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

const rsaKeyBits = 2048

// PublicKey is the JSON-serializable form of an account RSA public key.
// Fields are base64url (no padding), matching the format accounts publish
// to the server at signup.
type PublicKey struct {
	Kty string `json:"kty"` // always "RSA"
	N   string `json:"n"`   // modulus
	E   string `json:"e"`   // public exponent
}

// PrivateKey is the JSON-serializable form of an account RSA private key.
// It only ever travels encrypted inside a symmetric envelope.
type PrivateKey struct {
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
	D   string `json:"d"`
	P   string `json:"p"`
	Q   string `json:"q"`
}

// GenerateKeyPair генерирует RSA-2048 ключевую пару для аккаунта.
func GenerateKeyPair() (*PublicKey, *PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	pub := &PublicKey{
		Kty: "RSA",
		N:   b64url(key.N.Bytes()),
		E:   b64url(big.NewInt(int64(key.E)).Bytes()),
	}
	priv := &PrivateKey{
		Kty: "RSA",
		N:   pub.N,
		E:   pub.E,
		D:   b64url(key.D.Bytes()),
		P:   b64url(key.Primes[0].Bytes()),
		Q:   b64url(key.Primes[1].Bytes()),
	}

	return pub, priv, nil
}

// WrapKeyForRecipient encrypts a symmetric key under the recipient's public
// key (RSA-OAEP-SHA256). Only used during team invitation and resource group
// creation; the plaintext key never reaches the server.
func WrapKeyForRecipient(recipient *PublicKey, key []byte) (string, error) {
	pub, err := recipient.rsaKey()
	if err != nil {
		return "", err
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
	if err != nil {
		return "", fmt.Errorf("failed to wrap key: %w", err)
	}

	return hex.EncodeToString(wrapped), nil
}

// UnwrapKey decrypts a wrapped symmetric key with our own private key.
func UnwrapKey(own *PrivateKey, wrapped string) ([]byte, error) {
	priv, err := own.rsaKey()
	if err != nil {
		return nil, err
	}

	blob, err := hex.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wrapped key: %w", err)
	}

	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, blob, nil)
	if err != nil {
		return nil, ErrDecryption
	}

	return key, nil
}

func (k *PublicKey) rsaKey() (*rsa.PublicKey, error) {
	if k == nil || k.Kty != "RSA" {
		return nil, fmt.Errorf("public key type is not RSA")
	}

	n, err := b64urlToBigInt(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid public key modulus: %w", err)
	}
	e, err := b64urlToBigInt(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid public key exponent: %w", err)
	}

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

func (k *PrivateKey) rsaKey() (*rsa.PrivateKey, error) {
	if k == nil || k.Kty != "RSA" {
		return nil, fmt.Errorf("private key type is not RSA")
	}

	n, err := b64urlToBigInt(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid private key modulus: %w", err)
	}
	e, err := b64urlToBigInt(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid private key exponent: %w", err)
	}
	d, err := b64urlToBigInt(k.D)
	if err != nil {
		return nil, fmt.Errorf("invalid private key exponent d: %w", err)
	}
	p, err := b64urlToBigInt(k.P)
	if err != nil {
		return nil, fmt.Errorf("invalid private key prime p: %w", err)
	}
	q, err := b64urlToBigInt(k.Q)
	if err != nil {
		return nil, fmt.Errorf("invalid private key prime q: %w", err)
	}

	priv := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	priv.Precompute()

	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return priv, nil
}

func b64url(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func b64urlToBigInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("empty value")
	}
	return new(big.Int).SetBytes(b), nil
}
