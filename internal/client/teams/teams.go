// Package teams реализует клиентскую сторону раздачи ключей: приглашение в
// команду — это перешифровка ключей групп ресурсов под публичный ключ
// приглашаемого. Открытые ключи групп не покидают процесс.
package teams

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/restkeep/restkeep/internal/client/session"
	"github.com/restkeep/restkeep/internal/crypto"
	"github.com/restkeep/restkeep/pkg/api"
)

//go:generate moq -out transport_mock.go . Transport

// Transport — команды и приглашения, как их видит клиент.
type Transport interface {
	ListTeams(ctx context.Context) ([]api.Team, error)
	InviteA(ctx context.Context, teamID, inviteeEmail string) (*api.InviteAResponse, error)
	InviteB(ctx context.Context, teamID string, req api.InviteBRequest) error
}

// Service выполняет операции над командами от имени установленной сессии.
type Service struct {
	transport Transport
	sess      *session.Session
	logger    *slog.Logger
}

// NewService создает сервис команд.
func NewService(transport Transport, sess *session.Session, logger *slog.Logger) *Service {
	return &Service{
		transport: transport,
		sess:      sess,
		logger:    logger,
	}
}

// ListTeams возвращает команды текущего аккаунта.
func (s *Service) ListTeams(ctx context.Context) ([]api.Team, error) {
	teams, err := s.transport.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// Invite добавляет участника в команду. Две фазы:
//  1. invite-a: сервер отдает публичный ключ приглашаемого и ключи групп
//     команды, завернутые под наш публичный ключ;
//  2. локально распаковываем каждый ключ своим приватным ключом и
//     заворачиваем заново под ключ приглашаемого;
//  3. invite-b: отправляем перешифрованные ключи обратно.
func (s *Service) Invite(ctx context.Context, teamID, inviteeEmail string) error {
	inviteeEmail = session.NormalizeEmail(inviteeEmail)

	resp, err := s.transport.InviteA(ctx, teamID, inviteeEmail)
	if err != nil {
		return fmt.Errorf("invite-a failed: %w", err)
	}

	var inviteePublicKey crypto.PublicKey
	if err := json.Unmarshal([]byte(resp.AccountPublicKey), &inviteePublicKey); err != nil {
		return fmt.Errorf("invalid invitee public key: %w", err)
	}

	rewrapped := make([]api.ResourceGroupKey, 0, len(resp.ResourceGroupKeys))
	for _, groupKey := range resp.ResourceGroupKeys {
		plain, err := crypto.UnwrapKey(s.sess.PrivateKey, groupKey.EncSymmetricKey)
		if err != nil {
			return fmt.Errorf("failed to unwrap key of group %s: %w", groupKey.ResourceGroupID, err)
		}
		wrapped, err := crypto.WrapKeyForRecipient(&inviteePublicKey, plain)
		if err != nil {
			return fmt.Errorf("failed to rewrap key of group %s: %w", groupKey.ResourceGroupID, err)
		}
		rewrapped = append(rewrapped, api.ResourceGroupKey{
			ResourceGroupID: groupKey.ResourceGroupID,
			EncSymmetricKey: wrapped,
		})
	}

	err = s.transport.InviteB(ctx, teamID, api.InviteBRequest{
		AccountID:         resp.AccountID,
		ResourceGroupKeys: rewrapped,
	})
	if err != nil {
		return fmt.Errorf("invite-b failed: %w", err)
	}

	s.logger.Info("team member invited", "teamId", teamID, "email", inviteeEmail, "groups", len(rewrapped))
	return nil
}
