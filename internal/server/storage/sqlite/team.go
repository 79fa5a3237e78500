package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/restkeep/restkeep/internal/server/storage"
)

// CreateTeam registers a team with its first member
func (s *Storage) CreateTeam(ctx context.Context, team *storage.Team, ownerAccountID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO teams (id, name) VALUES (?, ?)`, team.ID, team.Name); err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO team_members (team_id, account_id) VALUES (?, ?)`,
		team.ID, ownerAccountID); err != nil {
		return fmt.Errorf("failed to insert team owner: %w", err)
	}

	return tx.Commit()
}

// ListTeamsForAccount returns teams the account belongs to
func (s *Storage) ListTeamsForAccount(ctx context.Context, accountID string) ([]*storage.Team, error) {
	query := `
		SELECT t.id, t.name
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE tm.account_id = ?
		ORDER BY t.id
	`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*storage.Team
	for rows.Next() {
		team := &storage.Team{}
		if err := rows.Scan(&team.ID, &team.Name); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

// IsTeamMember reports whether the account belongs to the team
func (s *Storage) IsTeamMember(ctx context.Context, teamID, accountID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM team_members WHERE team_id = ? AND account_id = ?`,
		teamID, accountID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return true, nil
}

// AddTeamMember adds an account to the team
func (s *Storage) AddTeamMember(ctx context.Context, teamID, accountID string) error {
	query := `
		INSERT INTO team_members (team_id, account_id) VALUES (?, ?)
		ON CONFLICT(team_id, account_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, teamID, accountID); err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

// LinkGroup attaches a resource group to the team
func (s *Storage) LinkGroup(ctx context.Context, teamID, groupID string) error {
	query := `
		INSERT INTO team_groups (team_id, group_id) VALUES (?, ?)
		ON CONFLICT(team_id, group_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, teamID, groupID); err != nil {
		return fmt.Errorf("failed to link group: %w", err)
	}
	return nil
}

// ListGroupIDs returns ids of groups attached to the team
func (s *Storage) ListGroupIDs(ctx context.Context, teamID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id FROM team_groups WHERE team_id = ? ORDER BY group_id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team groups: %w", err)
	}
	return ids, nil
}
