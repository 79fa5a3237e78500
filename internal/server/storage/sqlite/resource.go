package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/restkeep/restkeep/internal/server/storage"
)

// UpsertResource creates or replaces a resource
func (s *Storage) UpsertResource(ctx context.Context, res *storage.Resource) error {
	query := `
		INSERT INTO resources (id, type, parent_id, resource_group_id, etag, enc_content, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			parent_id = excluded.parent_id,
			resource_group_id = excluded.resource_group_id,
			etag = excluded.etag,
			enc_content = excluded.enc_content,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		res.ID,
		res.Type,
		res.ParentID,
		res.ResourceGroupID,
		res.ETag,
		res.EncContent,
		res.Deleted,
		res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert resource: %w", err)
	}
	return nil
}

// GetResource retrieves a resource by id
func (s *Storage) GetResource(ctx context.Context, id string) (*storage.Resource, error) {
	query := `
		SELECT id, type, parent_id, resource_group_id, etag, enc_content, deleted, updated_at
		FROM resources
		WHERE id = ?
	`
	res := &storage.Resource{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID,
		&res.Type,
		&res.ParentID,
		&res.ResourceGroupID,
		&res.ETag,
		&res.EncContent,
		&res.Deleted,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return res, nil
}

// ListResourcesForAccount returns every resource in groups the account is a
// member of, tombstones included
func (s *Storage) ListResourcesForAccount(ctx context.Context, accountID string) ([]*storage.Resource, error) {
	query := `
		SELECT r.id, r.type, r.parent_id, r.resource_group_id, r.etag, r.enc_content, r.deleted, r.updated_at
		FROM resources r
		JOIN group_members gm ON gm.group_id = r.resource_group_id
		WHERE gm.account_id = ?
		ORDER BY r.id
	`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*storage.Resource
	for rows.Next() {
		res := &storage.Resource{}
		err := rows.Scan(
			&res.ID,
			&res.Type,
			&res.ParentID,
			&res.ResourceGroupID,
			&res.ETag,
			&res.EncContent,
			&res.Deleted,
			&res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resources: %w", err)
	}
	return resources, nil
}
