package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/restkeep/restkeep/internal/server/storage"
)

// CreateHandshake stores a new handshake
func (s *Storage) CreateHandshake(ctx context.Context, hs *storage.Handshake) error {
	query := `
		INSERT INTO handshakes (id, account_id, srp_a, server_secret, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, hs.ID, hs.AccountID, hs.SrpA, hs.ServerSecret, hs.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert handshake: %w", err)
	}
	return nil
}

// GetHandshake retrieves a handshake by id
func (s *Storage) GetHandshake(ctx context.Context, id string) (*storage.Handshake, error) {
	query := `
		SELECT id, account_id, srp_a, server_secret, created_at
		FROM handshakes
		WHERE id = ?
	`
	hs := &storage.Handshake{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&hs.ID, &hs.AccountID, &hs.SrpA, &hs.ServerSecret, &hs.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrHandshakeNotFound
		}
		return nil, fmt.Errorf("failed to get handshake: %w", err)
	}
	return hs, nil
}

// DeleteHandshake removes a handshake
func (s *Storage) DeleteHandshake(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM handshakes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete handshake: %w", err)
	}
	return nil
}

// CreateSession stores a new session
func (s *Storage) CreateSession(ctx context.Context, sess *storage.Session) error {
	query := `
		INSERT INTO sessions (id, account_id, created_at)
		VALUES (?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, sess.ID, sess.AccountID, sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id
func (s *Storage) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	query := `
		SELECT id, account_id, created_at
		FROM sessions
		WHERE id = ?
	`
	sess := &storage.Session{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&sess.ID, &sess.AccountID, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// DeleteSession removes a session
func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
