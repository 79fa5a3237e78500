package api

import (
	"context"
	"fmt"

	"github.com/restkeep/restkeep/pkg/api"
)

// Signup регистрирует новый аккаунт. Тело содержит только соли, verifier и
// шифротексты.
func (c *Client) Signup(ctx context.Context, account api.Account) error {
	if err := c.doRequest(ctx, "POST", "/auth/signup", account, nil); err != nil {
		return fmt.Errorf("signup request failed: %w", err)
	}
	return nil
}

// LoginS запрашивает публичные соли аккаунта (шаг 1 рукопожатия).
func (c *Client) LoginS(ctx context.Context, email string) (*api.LoginSResponse, error) {
	var resp api.LoginSResponse
	err := c.doRequest(ctx, "POST", "/auth/login-s", api.LoginSRequest{Email: email}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login-s request failed: %w", err)
	}
	return &resp, nil
}

// LoginA отправляет клиентское эфемерное значение A (шаг 2).
func (c *Client) LoginA(ctx context.Context, req api.LoginARequest) (*api.LoginAResponse, error) {
	var resp api.LoginAResponse
	if err := c.doRequest(ctx, "POST", "/auth/login-a", req, &resp); err != nil {
		return nil, fmt.Errorf("login-a request failed: %w", err)
	}
	return &resp, nil
}

// LoginM1 отправляет доказательство M1 и получает серверное M2 (шаг 3).
func (c *Client) LoginM1(ctx context.Context, req api.LoginM1Request) (*api.LoginM1Response, error) {
	var resp api.LoginM1Response
	if err := c.doRequest(ctx, "POST", "/auth/login-m1", req, &resp); err != nil {
		return nil, fmt.Errorf("login-m1 request failed: %w", err)
	}
	return &resp, nil
}

// Logout инвалидирует серверную сессию.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, "POST", "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// WhoAmI возвращает метаданные аккаунта текущей сессии.
func (c *Client) WhoAmI(ctx context.Context) (*api.WhoAmIResponse, error) {
	var resp api.WhoAmIResponse
	if err := c.doRequest(ctx, "GET", "/auth/whoami", nil, &resp); err != nil {
		return nil, fmt.Errorf("whoami request failed: %w", err)
	}
	return &resp, nil
}
