package crypto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)
	require.NotNil(t, pub)
	require.NotNil(t, priv)

	assert.Equal(t, "RSA", pub.Kty)
	assert.Equal(t, "RSA", priv.Kty)
	assert.Equal(t, pub.N, priv.N)
	assert.NotEmpty(t, priv.D)
}

func TestWrapUnwrapKey(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	key, err := GenerateSymmetricKey()
	require.NoError(t, err)

	wrapped, err := WrapKeyForRecipient(pub, key)
	require.NoError(t, err)
	assert.NotContains(t, wrapped, string(key), "wrapped ключ не должен содержать plaintext")

	unwrapped, err := UnwrapKey(priv, wrapped)
	require.NoError(t, err)
	assert.Equal(t, key, unwrapped)
}

func TestUnwrapKey_WrongPrivateKey(t *testing.T) {
	pub, _, err := GenerateKeyPair()
	require.NoError(t, err)

	_, otherPriv, err := GenerateKeyPair()
	require.NoError(t, err)

	key, err := GenerateSymmetricKey()
	require.NoError(t, err)

	wrapped, err := WrapKeyForRecipient(pub, key)
	require.NoError(t, err)

	// Чужой приватный ключ не должен открыть envelope
	unwrapped, err := UnwrapKey(otherPriv, wrapped)
	require.ErrorIs(t, err, ErrDecryption)
	assert.Nil(t, unwrapped)
}

func TestKeysSurviveJSONRoundTrip(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	// Ключи аккаунта ходят по сети и хранятся как JSON-строки
	pubJSON, err := json.Marshal(pub)
	require.NoError(t, err)
	privJSON, err := json.Marshal(priv)
	require.NoError(t, err)

	var pub2 PublicKey
	require.NoError(t, json.Unmarshal(pubJSON, &pub2))
	var priv2 PrivateKey
	require.NoError(t, json.Unmarshal(privJSON, &priv2))

	key, err := GenerateSymmetricKey()
	require.NoError(t, err)

	wrapped, err := WrapKeyForRecipient(&pub2, key)
	require.NoError(t, err)

	unwrapped, err := UnwrapKey(&priv2, wrapped)
	require.NoError(t, err)
	assert.Equal(t, key, unwrapped)
}

func TestWrapKeyForRecipient_InvalidKey(t *testing.T) {
	key, err := GenerateSymmetricKey()
	require.NoError(t, err)

	_, err = WrapKeyForRecipient(&PublicKey{Kty: "EC"}, key)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not RSA")
}
