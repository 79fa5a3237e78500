package teams

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restkeep/restkeep/internal/client/session"
	"github.com/restkeep/restkeep/internal/crypto"
	"github.com/restkeep/restkeep/pkg/api"
)

func newTestService(t *testing.T, mock *TransportMock) (*Service, *session.Session) {
	t.Helper()

	pub, priv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	sess := &session.Session{ID: "ses_test", AccountID: "act_inviter", PublicKey: pub, PrivateKey: priv}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(mock, sess, logger), sess
}

func TestListTeams(t *testing.T) {
	mock := &TransportMock{
		ListTeamsFunc: func(ctx context.Context) ([]api.Team, error) {
			return []api.Team{{ID: "team_1", Name: "Backend"}}, nil
		},
	}
	svc, _ := newTestService(t, mock)

	teams, err := svc.ListTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Backend", teams[0].Name)
}

func TestInviteRewrapsKeysForInvitee(t *testing.T) {
	// Аккаунт приглашаемого со своей ключевой парой
	inviteePub, inviteePriv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	inviteePubJSON, err := json.Marshal(inviteePub)
	require.NoError(t, err)

	groupKey, err := crypto.GenerateSymmetricKey()
	require.NoError(t, err)

	var inviteB api.InviteBRequest
	mock := &TransportMock{
		InviteBFunc: func(ctx context.Context, teamID string, req api.InviteBRequest) error {
			inviteB = req
			return nil
		},
	}
	svc, sess := newTestService(t, mock)

	// Ключ группы приходит завернутым под ключ приглашающего
	wrappedForInviter, err := crypto.WrapKeyForRecipient(sess.PublicKey, groupKey)
	require.NoError(t, err)
	mock.InviteAFunc = func(ctx context.Context, teamID, inviteeEmail string) (*api.InviteAResponse, error) {
		assert.Equal(t, "newcomer@example.com", inviteeEmail, "email нормализуется")
		return &api.InviteAResponse{
			AccountID:        "act_invitee",
			AccountPublicKey: string(inviteePubJSON),
			ResourceGroupKeys: []api.ResourceGroupKey{
				{ResourceGroupID: "grp_1", EncSymmetricKey: wrappedForInviter},
			},
		}, nil
	}

	require.NoError(t, svc.Invite(context.Background(), "team_1", " Newcomer@Example.com "))

	require.Len(t, inviteB.ResourceGroupKeys, 1)
	rewrapped := inviteB.ResourceGroupKeys[0]
	assert.Equal(t, "grp_1", rewrapped.ResourceGroupID)
	assert.NotEqual(t, wrappedForInviter, rewrapped.EncSymmetricKey)

	// Приглашаемый может распаковать ключ своим приватным ключом
	got, err := crypto.UnwrapKey(inviteePriv, rewrapped.EncSymmetricKey)
	require.NoError(t, err)
	assert.Equal(t, groupKey, got)

	// Приглашающий больше не может: ключ перешифрован не под него
	_, err = crypto.UnwrapKey(sess.PrivateKey, rewrapped.EncSymmetricKey)
	assert.Error(t, err)
}

func TestInviteFailsClosedOnBadKey(t *testing.T) {
	groupKey, err := crypto.GenerateSymmetricKey()
	require.NoError(t, err)

	mock := &TransportMock{}
	svc, _ := newTestService(t, mock)

	// Ключ группы завернут под ЧУЖОЙ публичный ключ: распаковка провалится,
	// invite-b не должен случиться
	otherPub, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	wrappedForStranger, err := crypto.WrapKeyForRecipient(otherPub, groupKey)
	require.NoError(t, err)

	mock.InviteAFunc = func(ctx context.Context, teamID, inviteeEmail string) (*api.InviteAResponse, error) {
		return &api.InviteAResponse{
			AccountID:        "act_invitee",
			AccountPublicKey: `{"kty":"RSA"}`,
			ResourceGroupKeys: []api.ResourceGroupKey{
				{ResourceGroupID: "grp_1", EncSymmetricKey: wrappedForStranger},
			},
		}, nil
	}
	mock.InviteBFunc = func(ctx context.Context, teamID string, req api.InviteBRequest) error {
		t.Fatal("invite-b must not be called when unwrap fails")
		return nil
	}

	err = svc.Invite(context.Background(), "team_1", "newcomer@example.com")
	require.Error(t, err)
	assert.Empty(t, mock.InviteBCalls())
}
