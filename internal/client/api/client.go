package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/restkeep/restkeep/pkg/api"
)

// Заголовки протокола.
const (
	HeaderSessionID = "X-Session-Id"
	HeaderClient    = "X-Restkeep-Client"
	HeaderCommand   = "X-Restkeep-Command"
)

// APIError представляет ошибку уровня протокола (не-2xx ответ сервера).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// CommandListener получает команду из заголовка X-Restkeep-Command.
type CommandListener func(command string, args map[string]string)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	clientID    string // значение X-Restkeep-Client, например "cli/1.0.0"
	mu          sync.RWMutex
	sessionID   string
	cmdListener CommandListener
}

// NewClient создает новый API клиент
func NewClient(baseURL, clientID string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetSessionID устанавливает идентификатор сессии для последующих запросов.
// Пустая строка сбрасывает сессию.
func (c *Client) SetSessionID(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// SessionID возвращает текущий идентификатор сессии.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// OnCommand регистрирует слушателя команд сервера.
func (c *Client) OnCommand(fn CommandListener) {
	c.mu.Lock()
	c.cmdListener = fn
	c.mu.Unlock()
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderClient, c.clientID)
	if sid := c.SessionID(); sid != "" {
		req.Header.Set(HeaderSessionID, sid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.dispatchCommand(resp.Header.Get(HeaderCommand))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(respBody)
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// dispatchCommand разбирает заголовок X-Restkeep-Command как URI вида
// scheme://{команда}?{аргументы} и передает его слушателю.
func (c *Client) dispatchCommand(raw string) {
	if raw == "" {
		return
	}

	c.mu.RLock()
	listener := c.cmdListener
	c.mu.RUnlock()
	if listener == nil {
		return
	}

	u, err := url.Parse(raw)
	if err != nil {
		c.logger.Warn("malformed server command header", "value", raw, "error", err)
		return
	}

	command := u.Host + u.Path
	args := make(map[string]string)
	for k, v := range u.Query() {
		if len(v) > 0 {
			args[k] = v[0]
		}
	}
	listener(command, args)
}
