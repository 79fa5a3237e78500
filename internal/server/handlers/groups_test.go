package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restkeep/restkeep/pkg/api"
)

func createGroup(t *testing.T, h *GroupHandler, accountID string, req api.CreateResourceGroupRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)

	r := authedRequest(t, http.MethodPost, "/api/resource_groups", bytes.NewReader(data), accountID)
	rec := httptest.NewRecorder()
	h.Create(rec, r)
	return rec
}

func TestGroupHandler_Create(t *testing.T) {
	st := newMemStorage()
	h := NewGroupHandler(testLogger(), st)

	rec := createGroup(t, h, testAccountID, api.CreateResourceGroupRequest{
		ID:              "grp_1",
		Name:            "My Workspace",
		EncSymmetricKey: "deadbeef",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	// Создатель сразу становится участником со своим завернутым ключом
	group, encKey, err := st.GetGroupForAccount(t.Context(), "grp_1", testAccountID)
	require.NoError(t, err)
	assert.Equal(t, "My Workspace", group.Name)
	assert.Equal(t, "deadbeef", encKey)
}

func TestGroupHandler_Create_Duplicate(t *testing.T) {
	st := newMemStorage()
	h := NewGroupHandler(testLogger(), st)

	req := api.CreateResourceGroupRequest{ID: "grp_1", EncSymmetricKey: "deadbeef"}
	rec := createGroup(t, h, testAccountID, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = createGroup(t, h, testAccountID, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGroupHandler_Create_MissingKey(t *testing.T) {
	st := newMemStorage()
	h := NewGroupHandler(testLogger(), st)

	rec := createGroup(t, h, testAccountID, api.CreateResourceGroupRequest{ID: "grp_1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroupHandler_Get_ReturnsMemberKey(t *testing.T) {
	st := newMemStorage()
	h := NewGroupHandler(testLogger(), st)

	rec := createGroup(t, h, testAccountID, api.CreateResourceGroupRequest{
		ID:              "grp_1",
		Name:            "My Workspace",
		EncSymmetricKey: "key-for-owner",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, st.AddMember(t.Context(), "grp_1", "act_0002", "key-for-invitee"))

	req := authedRequest(t, http.MethodGet, "/api/resource_groups/grp_1", nil, "act_0002")
	req.SetPathValue("id", "grp_1")
	w := httptest.NewRecorder()
	h.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// Каждый участник получает ключ, завернутый именно под его публичный ключ
	var resp api.ResourceGroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "key-for-invitee", resp.EncSymmetricKey)
}

func TestGroupHandler_Get_NotMember(t *testing.T) {
	st := newMemStorage()
	h := NewGroupHandler(testLogger(), st)

	rec := createGroup(t, h, "act_other", api.CreateResourceGroupRequest{ID: "grp_1", EncSymmetricKey: "k"})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := authedRequest(t, http.MethodGet, "/api/resource_groups/grp_1", nil, testAccountID)
	req.SetPathValue("id", "grp_1")
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGroupHandler_Get_NotFound(t *testing.T) {
	st := newMemStorage()
	h := NewGroupHandler(testLogger(), st)

	req := authedRequest(t, http.MethodGet, "/api/resource_groups/grp_ghost", nil, testAccountID)
	req.SetPathValue("id", "grp_ghost")
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
