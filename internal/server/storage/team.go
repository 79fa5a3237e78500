package storage

import "context"

// Team — команда: набор аккаунтов, разделяющих группы ресурсов.
type Team struct {
	ID   string
	Name string
}

// TeamStorage persists teams and their resource group links
type TeamStorage interface {
	// CreateTeam registers a team with its first member
	CreateTeam(ctx context.Context, team *Team, ownerAccountID string) error

	// ListTeamsForAccount returns teams the account belongs to
	ListTeamsForAccount(ctx context.Context, accountID string) ([]*Team, error)

	// IsTeamMember reports whether the account belongs to the team
	IsTeamMember(ctx context.Context, teamID, accountID string) (bool, error)

	// AddTeamMember adds an account to the team
	AddTeamMember(ctx context.Context, teamID, accountID string) error

	// LinkGroup attaches a resource group to the team
	LinkGroup(ctx context.Context, teamID, groupID string) error

	// ListGroupIDs returns ids of groups attached to the team
	ListGroupIDs(ctx context.Context, teamID string) ([]string, error)
}
