package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restkeep/restkeep/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func createTestAccount(t *testing.T, ctx context.Context, s *Storage) *storage.Account {
	t.Helper()
	id := "act_" + uuid.New().String()[:8]
	account := &storage.Account{
		ID:              id,
		Email:           id + "@example.com",
		FirstName:       "Test",
		LastName:        "Account",
		Verifier:        "deadbeef",
		PublicKey:       `{"n":"..."}`,
		EncPrivateKey:   `{"iv":"00"}`,
		EncSymmetricKey: `{"iv":"01"}`,
		SaltKey:         "aa",
		SaltAuth:        "bb",
		SaltEnc:         "cc",
		CreatedAt:       time.Now(),
	}
	require.NoError(t, s.CreateAccount(ctx, account))
	return account
}

func TestAccountStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s)

	byEmail, err := s.GetAccountByEmail(ctx, account.Email)
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
	assert.Equal(t, account.Verifier, byEmail.Verifier)
	assert.Equal(t, account.EncSymmetricKey, byEmail.EncSymmetricKey)
	assert.Equal(t, account.SaltAuth, byEmail.SaltAuth)

	byID, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, byID.Email)
}

func TestAccountStorage_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s)

	dup := *account
	dup.ID = "act_other"
	err := s.CreateAccount(ctx, &dup)
	assert.ErrorIs(t, err, storage.ErrAccountExists)
}

func TestAccountStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetAccountByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)

	_, err = s.GetAccountByID(ctx, "act_ghost")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestHandshakeStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s)

	hs := &storage.Handshake{
		ID:           "hsk_1",
		AccountID:    account.ID,
		SrpA:         "aabbcc",
		ServerSecret: "ddeeff",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateHandshake(ctx, hs))

	got, err := s.GetHandshake(ctx, "hsk_1")
	require.NoError(t, err)
	assert.Equal(t, hs.SrpA, got.SrpA)
	assert.Equal(t, hs.ServerSecret, got.ServerSecret)
	assert.Equal(t, account.ID, got.AccountID)

	require.NoError(t, s.DeleteHandshake(ctx, "hsk_1"))

	_, err = s.GetHandshake(ctx, "hsk_1")
	assert.ErrorIs(t, err, storage.ErrHandshakeNotFound)
}

func TestSessionStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s)

	sess := &storage.Session{
		ID:        "deadbeefcafe",
		AccountID: account.ID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateSession(ctx, sess))

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.AccountID)

	require.NoError(t, s.DeleteSession(ctx, sess.ID))

	_, err = s.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}
