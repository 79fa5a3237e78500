package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restkeep/restkeep/internal/server/handlers"
	"github.com/restkeep/restkeep/internal/server/storage"
)

type mockSessionStorage struct {
	sessions map[string]*storage.Session
}

func (m *mockSessionStorage) CreateSession(ctx context.Context, sess *storage.Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *mockSessionStorage) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return sess, nil
}

func (m *mockSessionStorage) DeleteSession(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware_ValidSession(t *testing.T) {
	sessions := &mockSessionStorage{sessions: map[string]*storage.Session{
		"deadbeef": {ID: "deadbeef", AccountID: "act_0001"},
	}}

	var gotAccountID, gotSessionID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccountID, _ = handlers.GetAccountID(r.Context())
		gotSessionID, _ = handlers.GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(testLogger(), sessions)(next)

	req := httptest.NewRequest(http.MethodGet, "/auth/whoami", nil)
	req.Header.Set(HeaderSessionID, "deadbeef")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "act_0001", gotAccountID)
	assert.Equal(t, "deadbeef", gotSessionID)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	sessions := &mockSessionStorage{sessions: map[string]*storage.Session{}}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	handler := AuthMiddleware(testLogger(), sessions)(next)

	req := httptest.NewRequest(http.MethodGet, "/auth/whoami", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthMiddleware_UnknownSession(t *testing.T) {
	sessions := &mockSessionStorage{sessions: map[string]*storage.Session{}}

	handler := AuthMiddleware(testLogger(), sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/sync", nil)
	req.Header.Set(HeaderSessionID, "feedface")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
