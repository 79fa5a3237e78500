package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restkeep/restkeep/internal/server/storage"
	"github.com/restkeep/restkeep/pkg/api"
)

// seedTeamFixture создает команду с владельцем act_0001, одной группой и
// вторым зарегистрированным аккаунтом act_0002
func seedTeamFixture(t *testing.T, st *memStorage) {
	t.Helper()

	st.accounts["owner@example.com"] = &storage.Account{
		ID:        testAccountID,
		Email:     "owner@example.com",
		PublicKey: `{"n":"owner"}`,
	}
	st.accounts["invitee@example.com"] = &storage.Account{
		ID:        "act_0002",
		Email:     "invitee@example.com",
		PublicKey: `{"n":"invitee"}`,
	}

	require.NoError(t, st.CreateTeam(t.Context(), &storage.Team{ID: "tea_1", Name: "Core"}, testAccountID))
	require.NoError(t, st.CreateGroup(t.Context(), &storage.ResourceGroup{ID: "grp_1"}, testAccountID, "key-for-owner"))
	require.NoError(t, st.LinkGroup(t.Context(), "tea_1", "grp_1"))
}

func newTeamHandler(st *memStorage) *TeamHandler {
	return NewTeamHandler(testLogger(), st, st, st)
}

func TestTeamHandler_List(t *testing.T) {
	st := newMemStorage()
	seedTeamFixture(t, st)
	h := newTeamHandler(st)

	req := authedRequest(t, http.MethodGet, "/api/teams", nil, testAccountID)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var teams []api.Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teams))
	require.Len(t, teams, 1)
	assert.Equal(t, "tea_1", teams[0].ID)
}

func TestTeamHandler_List_EmptyForOutsider(t *testing.T) {
	st := newMemStorage()
	seedTeamFixture(t, st)
	h := newTeamHandler(st)

	req := authedRequest(t, http.MethodGet, "/api/teams", nil, "act_0002")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func postTeamJSON(t *testing.T, handler http.HandlerFunc, target, teamID, accountID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := authedRequest(t, http.MethodPost, target, bytes.NewReader(data), accountID)
	req.SetPathValue("id", teamID)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestTeamHandler_InviteA(t *testing.T) {
	st := newMemStorage()
	seedTeamFixture(t, st)
	h := newTeamHandler(st)

	rec := postTeamJSON(t, h.InviteA, "/api/teams/tea_1/invite-a", "tea_1", testAccountID,
		api.InviteARequest{InviteeEmail: "Invitee@Example.com"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.InviteAResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "act_0002", resp.AccountID)
	assert.Equal(t, `{"n":"invitee"}`, resp.AccountPublicKey)
	require.Len(t, resp.ResourceGroupKeys, 1)
	// Ключи возвращаются завернутыми под ключ приглашающего
	assert.Equal(t, "key-for-owner", resp.ResourceGroupKeys[0].EncSymmetricKey)
}

func TestTeamHandler_InviteA_NotTeamMember(t *testing.T) {
	st := newMemStorage()
	seedTeamFixture(t, st)
	h := newTeamHandler(st)

	rec := postTeamJSON(t, h.InviteA, "/api/teams/tea_1/invite-a", "tea_1", "act_0002",
		api.InviteARequest{InviteeEmail: "owner@example.com"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTeamHandler_InviteA_UnknownInvitee(t *testing.T) {
	st := newMemStorage()
	seedTeamFixture(t, st)
	h := newTeamHandler(st)

	rec := postTeamJSON(t, h.InviteA, "/api/teams/tea_1/invite-a", "tea_1", testAccountID,
		api.InviteARequest{InviteeEmail: "ghost@example.com"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamHandler_InviteB_GrantsMembership(t *testing.T) {
	st := newMemStorage()
	seedTeamFixture(t, st)
	h := newTeamHandler(st)

	rec := postTeamJSON(t, h.InviteB, "/api/teams/tea_1/invite-b", "tea_1", testAccountID,
		api.InviteBRequest{
			AccountID: "act_0002",
			ResourceGroupKeys: []api.ResourceGroupKey{
				{ResourceGroupID: "grp_1", EncSymmetricKey: "key-for-invitee"},
			},
		})

	require.Equal(t, http.StatusNoContent, rec.Code)

	// Приглашенный стал участником команды и группы
	member, err := st.IsTeamMember(t.Context(), "tea_1", "act_0002")
	require.NoError(t, err)
	assert.True(t, member)

	_, encKey, err := st.GetGroupForAccount(t.Context(), "grp_1", "act_0002")
	require.NoError(t, err)
	assert.Equal(t, "key-for-invitee", encKey)
}

func TestTeamHandler_InviteB_RejectsForeignGroup(t *testing.T) {
	st := newMemStorage()
	seedTeamFixture(t, st)
	h := newTeamHandler(st)

	// grp_2 не принадлежит команде
	require.NoError(t, st.CreateGroup(t.Context(), &storage.ResourceGroup{ID: "grp_2"}, testAccountID, "k"))

	rec := postTeamJSON(t, h.InviteB, "/api/teams/tea_1/invite-b", "tea_1", testAccountID,
		api.InviteBRequest{
			AccountID: "act_0002",
			ResourceGroupKeys: []api.ResourceGroupKey{
				{ResourceGroupID: "grp_2", EncSymmetricKey: "smuggled"},
			},
		})

	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Никакого доступа выдано не было
	member, err := st.IsMember(t.Context(), "grp_2", "act_0002")
	require.NoError(t, err)
	assert.False(t, member)
}
