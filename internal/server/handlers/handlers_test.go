package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/restkeep/restkeep/internal/server/storage"
)

// memStorage is an in-memory implementation of the storage interfaces for testing
type memStorage struct {
	accounts   map[string]*storage.Account // email -> Account
	handshakes map[string]*storage.Handshake
	sessions   map[string]*storage.Session
	resources  map[string]*storage.Resource
	groups     map[string]*storage.ResourceGroup
	members    map[string]map[string]string // groupID -> accountID -> encKey
	teams      map[string]*storage.Team
	teamMember map[string]map[string]bool // teamID -> accountID
	teamGroups map[string][]string        // teamID -> groupIDs

	createAccountError error
	listError          error
}

func newMemStorage() *memStorage {
	return &memStorage{
		accounts:   make(map[string]*storage.Account),
		handshakes: make(map[string]*storage.Handshake),
		sessions:   make(map[string]*storage.Session),
		resources:  make(map[string]*storage.Resource),
		groups:     make(map[string]*storage.ResourceGroup),
		members:    make(map[string]map[string]string),
		teams:      make(map[string]*storage.Team),
		teamMember: make(map[string]map[string]bool),
		teamGroups: make(map[string][]string),
	}
}

func (m *memStorage) CreateAccount(ctx context.Context, account *storage.Account) error {
	if m.createAccountError != nil {
		return m.createAccountError
	}
	if _, exists := m.accounts[account.Email]; exists {
		return storage.ErrAccountExists
	}
	m.accounts[account.Email] = account
	return nil
}

func (m *memStorage) GetAccountByEmail(ctx context.Context, email string) (*storage.Account, error) {
	account, ok := m.accounts[email]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}
	return account, nil
}

func (m *memStorage) GetAccountByID(ctx context.Context, id string) (*storage.Account, error) {
	for _, account := range m.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, storage.ErrAccountNotFound
}

func (m *memStorage) CreateHandshake(ctx context.Context, hs *storage.Handshake) error {
	m.handshakes[hs.ID] = hs
	return nil
}

func (m *memStorage) GetHandshake(ctx context.Context, id string) (*storage.Handshake, error) {
	hs, ok := m.handshakes[id]
	if !ok {
		return nil, storage.ErrHandshakeNotFound
	}
	return hs, nil
}

func (m *memStorage) DeleteHandshake(ctx context.Context, id string) error {
	delete(m.handshakes, id)
	return nil
}

func (m *memStorage) CreateSession(ctx context.Context, sess *storage.Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStorage) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return sess, nil
}

func (m *memStorage) DeleteSession(ctx context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return storage.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStorage) UpsertResource(ctx context.Context, res *storage.Resource) error {
	clone := *res
	m.resources[res.ID] = &clone
	return nil
}

func (m *memStorage) GetResource(ctx context.Context, id string) (*storage.Resource, error) {
	res, ok := m.resources[id]
	if !ok {
		return nil, storage.ErrResourceNotFound
	}
	clone := *res
	return &clone, nil
}

func (m *memStorage) ListResourcesForAccount(ctx context.Context, accountID string) ([]*storage.Resource, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []*storage.Resource
	for _, res := range m.resources {
		if key, ok := m.members[res.ResourceGroupID]; ok {
			if _, member := key[accountID]; member {
				clone := *res
				out = append(out, &clone)
			}
		}
	}
	return out, nil
}

func (m *memStorage) CreateGroup(ctx context.Context, group *storage.ResourceGroup, accountID, encSymmetricKey string) error {
	if _, exists := m.groups[group.ID]; exists {
		return storage.ErrGroupExists
	}
	m.groups[group.ID] = group
	m.members[group.ID] = map[string]string{accountID: encSymmetricKey}
	return nil
}

func (m *memStorage) GetGroupForAccount(ctx context.Context, groupID, accountID string) (*storage.ResourceGroup, string, error) {
	group, ok := m.groups[groupID]
	if !ok {
		return nil, "", storage.ErrGroupNotFound
	}
	encKey, member := m.members[groupID][accountID]
	if !member {
		return nil, "", storage.ErrNotMember
	}
	return group, encKey, nil
}

func (m *memStorage) AddMember(ctx context.Context, groupID, accountID, encSymmetricKey string) error {
	if _, ok := m.groups[groupID]; !ok {
		return storage.ErrGroupNotFound
	}
	m.members[groupID][accountID] = encSymmetricKey
	return nil
}

func (m *memStorage) IsMember(ctx context.Context, groupID, accountID string) (bool, error) {
	_, member := m.members[groupID][accountID]
	return member, nil
}

func (m *memStorage) CreateTeam(ctx context.Context, team *storage.Team, ownerAccountID string) error {
	m.teams[team.ID] = team
	m.teamMember[team.ID] = map[string]bool{ownerAccountID: true}
	return nil
}

func (m *memStorage) ListTeamsForAccount(ctx context.Context, accountID string) ([]*storage.Team, error) {
	var out []*storage.Team
	for id, team := range m.teams {
		if m.teamMember[id][accountID] {
			out = append(out, team)
		}
	}
	return out, nil
}

func (m *memStorage) IsTeamMember(ctx context.Context, teamID, accountID string) (bool, error) {
	return m.teamMember[teamID][accountID], nil
}

func (m *memStorage) AddTeamMember(ctx context.Context, teamID, accountID string) error {
	if _, ok := m.teams[teamID]; !ok {
		return storage.ErrTeamNotFound
	}
	m.teamMember[teamID][accountID] = true
	return nil
}

func (m *memStorage) LinkGroup(ctx context.Context, teamID, groupID string) error {
	m.teamGroups[teamID] = append(m.teamGroups[teamID], groupID)
	return nil
}

func (m *memStorage) ListGroupIDs(ctx context.Context, teamID string) ([]string, error) {
	return m.teamGroups[teamID], nil
}

var testSession = storage.Session{ID: "deadbeef", AccountID: "act_0001"}

func contextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request carrying an authenticated account, the way
// the auth middleware would
func authedRequest(t *testing.T, method, target string, body io.Reader, accountID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), AccountIDKey, accountID)
	return req.WithContext(ctx)
}
