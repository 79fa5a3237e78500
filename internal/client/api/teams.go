package api

import (
	"context"
	"fmt"

	"github.com/restkeep/restkeep/pkg/api"
)

// ListTeams возвращает команды текущего аккаунта.
func (c *Client) ListTeams(ctx context.Context) ([]api.Team, error) {
	var resp []api.Team
	if err := c.doRequest(ctx, "GET", "/api/teams", nil, &resp); err != nil {
		return nil, fmt.Errorf("list teams failed: %w", err)
	}
	return resp, nil
}

// InviteA начинает приглашение: возвращает публичный ключ приглашаемого и
// ключи групп команды, завернутые под ключ приглашающего.
func (c *Client) InviteA(ctx context.Context, teamID, inviteeEmail string) (*api.InviteAResponse, error) {
	var resp api.InviteAResponse
	path := fmt.Sprintf("/api/teams/%s/invite-a", teamID)
	err := c.doRequest(ctx, "POST", path, api.InviteARequest{InviteeEmail: inviteeEmail}, &resp)
	if err != nil {
		return nil, fmt.Errorf("invite-a failed: %w", err)
	}
	return &resp, nil
}

// InviteB завершает приглашение перезавернутыми ключами групп.
func (c *Client) InviteB(ctx context.Context, teamID string, req api.InviteBRequest) error {
	path := fmt.Sprintf("/api/teams/%s/invite-b", teamID)
	if err := c.doRequest(ctx, "POST", path, req, nil); err != nil {
		return fmt.Errorf("invite-b failed: %w", err)
	}
	return nil
}
