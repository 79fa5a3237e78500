package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/restkeep/restkeep/internal/server/storage"
)

// CreateGroup registers a group and its owner's wrapped key
func (s *Storage) CreateGroup(ctx context.Context, group *storage.ResourceGroup, accountID, encSymmetricKey string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO resource_groups (id, name) VALUES (?, ?)`,
		group.ID, group.Name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrGroupExists
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, account_id, enc_symmetric_key) VALUES (?, ?, ?)`,
		group.ID, accountID, encSymmetricKey)
	if err != nil {
		return fmt.Errorf("failed to insert group owner: %w", err)
	}

	return tx.Commit()
}

// GetGroupForAccount returns the group and the key wrapped for the member
func (s *Storage) GetGroupForAccount(ctx context.Context, groupID, accountID string) (*storage.ResourceGroup, string, error) {
	group := &storage.ResourceGroup{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM resource_groups WHERE id = ?`, groupID).
		Scan(&group.ID, &group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", storage.ErrGroupNotFound
		}
		return nil, "", fmt.Errorf("failed to get group: %w", err)
	}

	var encKey string
	err = s.db.QueryRowContext(ctx,
		`SELECT enc_symmetric_key FROM group_members WHERE group_id = ? AND account_id = ?`,
		groupID, accountID).Scan(&encKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", storage.ErrNotMember
		}
		return nil, "", fmt.Errorf("failed to get membership: %w", err)
	}

	return group, encKey, nil
}

// AddMember grants an account access to a group
func (s *Storage) AddMember(ctx context.Context, groupID, accountID, encSymmetricKey string) error {
	query := `
		INSERT INTO group_members (group_id, account_id, enc_symmetric_key)
		VALUES (?, ?, ?)
		ON CONFLICT(group_id, account_id) DO UPDATE SET
			enc_symmetric_key = excluded.enc_symmetric_key
	`
	_, err := s.db.ExecContext(ctx, query, groupID, accountID, encSymmetricKey)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// IsMember reports whether the account belongs to the group
func (s *Storage) IsMember(ctx context.Context, groupID, accountID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM group_members WHERE group_id = ? AND account_id = ?`,
		groupID, accountID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}
