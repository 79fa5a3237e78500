package handlers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restkeep/restkeep/internal/srp"
	"github.com/restkeep/restkeep/pkg/api"
)

func validSignup(email string) api.Account {
	verifier := srp.ComputeVerifier(srp.RFC5054Group2048, []byte("aa"), []byte(email), []byte("secret"))
	return api.Account{
		ID:              "act_0001",
		Email:           email,
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Verifier:        hex.EncodeToString(verifier),
		PublicKey:       `{"n":"...","e":"AQAB"}`,
		EncPrivateKey:   `{"iv":"00","t":"00","d":"00","ad":"00"}`,
		EncSymmetricKey: `{"iv":"00","t":"00","d":"00","ad":"00"}`,
		SaltKey:         "aabb",
		SaltAuth:        "ccdd",
		SaltEnc:         "eeff",
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.Signup, "/auth/signup", validSignup("Ada@Example.com "))

	assert.Equal(t, http.StatusCreated, w.Code)

	// Email нормализуется до нижнего регистра
	account, err := st.GetAccountByEmail(t.Context(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "act_0001", account.ID)
}

func TestAuthHandler_Signup_Duplicate(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.Signup, "/auth/signup", validSignup("ada@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Signup, "/auth/signup", validSignup("ada@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Signup_InvalidJSON(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.Signup(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Signup_MissingVerifier(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	body := validSignup("ada@example.com")
	body.Verifier = ""
	w := postJSON(t, h.Signup, "/auth/signup", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LoginS_ReturnsSalts(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.Signup, "/auth/signup", validSignup("ada@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.LoginS, "/auth/login-s", api.LoginSRequest{Email: "ada@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.LoginSResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "aabb", resp.SaltKey)
	assert.Equal(t, "ccdd", resp.SaltAuth)
}

func TestAuthHandler_LoginS_UnknownEmail(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.LoginS, "/auth/login-s", api.LoginSRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// runHandshake drives login-a and login-m1 through the handlers with a real
// SRP client and returns the final recorder plus the client
func runHandshake(t *testing.T, h *AuthHandler, email, secret string) (*httptest.ResponseRecorder, *srp.Client) {
	t.Helper()

	clientSecret, err := srp.GenerateSecret()
	require.NoError(t, err)
	client := srp.NewClient(srp.RFC5054Group2048, []byte("aa"), []byte(email), []byte(secret), clientSecret)

	w := postJSON(t, h.LoginA, "/auth/login-a", api.LoginARequest{
		SrpA:  hex.EncodeToString(client.A()),
		Email: email,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginA api.LoginAResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginA))
	require.NotEmpty(t, loginA.SessionStarterID)

	srpB, err := hex.DecodeString(loginA.SrpB)
	require.NoError(t, err)
	require.NoError(t, client.SetB(srpB))

	m1, err := client.M1()
	require.NoError(t, err)

	w = postJSON(t, h.LoginM1, "/auth/login-m1", api.LoginM1Request{
		SrpM1:            hex.EncodeToString(m1),
		SessionStarterID: loginA.SessionStarterID,
	})
	return w, client
}

func TestAuthHandler_FullHandshake(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.Signup, "/auth/signup", validSignup("ada@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, client := runHandshake(t, h, "ada@example.com", "secret")
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.LoginM1Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Сервер доказал знание verifier-а
	m2, err := hex.DecodeString(resp.SrpM2)
	require.NoError(t, err)
	require.NoError(t, client.CheckM2(m2))

	// Идентификатор сессии равен hex общего секрета K
	key, err := client.K()
	require.NoError(t, err)
	sess, err := st.GetSession(t.Context(), hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, "act_0001", sess.AccountID)

	// Handshake одноразовый
	assert.Empty(t, st.handshakes)
}

func TestAuthHandler_LoginM1_WrongSecret(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.Signup, "/auth/signup", validSignup("ada@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = runHandshake(t, h, "ada@example.com", "wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Неудачная попытка не оставляет ни сессии, ни handshake
	assert.Empty(t, st.sessions)
	assert.Empty(t, st.handshakes)
}

func TestAuthHandler_LoginM1_UnknownHandshake(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.LoginM1, "/auth/login-m1", api.LoginM1Request{
		SrpM1:            "aabb",
		SessionStarterID: "hsk_missing",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_WhoAmI(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	w := postJSON(t, h.Signup, "/auth/signup", validSignup("ada@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := authedRequest(t, http.MethodGet, "/auth/whoami", nil, "act_0001")
	rec := httptest.NewRecorder()
	h.WhoAmI(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.WhoAmIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "act_0001", resp.AccountID)
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.Equal(t, "eeff", resp.SaltEnc)
	assert.NotEmpty(t, resp.EncSymmetricKey)
}

func TestAuthHandler_Logout(t *testing.T) {
	st := newMemStorage()
	h := NewAuthHandler(testLogger(), st, st, st)

	require.NoError(t, st.CreateSession(t.Context(), &testSession))

	req := authedRequest(t, http.MethodPost, "/auth/logout", nil, testSession.AccountID)
	req = req.WithContext(contextWithSession(req.Context(), testSession.ID))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, st.sessions)
}
