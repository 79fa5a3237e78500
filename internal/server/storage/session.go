package storage

import (
	"context"
	"time"
)

// Handshake — состояние SRP-рукопожатия между login-a и login-m1. Хранится
// секрет сервера, а не эфемерное B: из секрета и verifier-а серверная
// половина восстанавливается детерминированно.
type Handshake struct {
	ID           string
	AccountID    string
	SrpA         string // hex, эфемерное значение клиента
	ServerSecret string // hex
	CreatedAt    time.Time
}

// Session — установленная сессия: идентификатор равен hex общего секрета K.
type Session struct {
	ID        string
	AccountID string
	CreatedAt time.Time
}

// HandshakeStorage persists in-flight login handshakes
type HandshakeStorage interface {
	// CreateHandshake stores a new handshake
	CreateHandshake(ctx context.Context, hs *Handshake) error

	// GetHandshake retrieves a handshake by id
	// Returns ErrHandshakeNotFound if it doesn't exist
	GetHandshake(ctx context.Context, id string) (*Handshake, error)

	// DeleteHandshake removes a handshake (one attempt per handshake)
	DeleteHandshake(ctx context.Context, id string) error
}

// SessionStorage persists established sessions
type SessionStorage interface {
	// CreateSession stores a new session
	CreateSession(ctx context.Context, sess *Session) error

	// GetSession retrieves a session by id
	// Returns ErrSessionNotFound if it doesn't exist
	GetSession(ctx context.Context, id string) (*Session, error)

	// DeleteSession removes a session
	DeleteSession(ctx context.Context, id string) error
}
