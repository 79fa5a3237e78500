package handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/restkeep/restkeep/internal/crypto"
	"github.com/restkeep/restkeep/internal/server/storage"
	"github.com/restkeep/restkeep/internal/srp"
	"github.com/restkeep/restkeep/pkg/api"
)

// AuthHandler обрабатывает запросы регистрации и SRP-входа
type AuthHandler struct {
	logger     *slog.Logger
	accounts   storage.AccountStorage
	handshakes storage.HandshakeStorage
	sessions   storage.SessionStorage
	group      *srp.Group
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, accounts storage.AccountStorage, handshakes storage.HandshakeStorage, sessions storage.SessionStorage) *AuthHandler {
	return &AuthHandler{
		logger:     logger,
		accounts:   accounts,
		handshakes: handshakes,
		sessions:   sessions,
		group:      srp.RFC5054Group2048,
	}
}

// Signup обрабатывает POST /auth/signup
// Регистрация нового аккаунта: сервер получает verifier и шифротексты, но
// никогда не видит пароль или открытые ключи
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.Account
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode signup request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid signup request", slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	account := &storage.Account{
		ID:              req.ID,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Verifier:        req.Verifier,
		PublicKey:       req.PublicKey,
		EncPrivateKey:   req.EncPrivateKey,
		EncSymmetricKey: req.EncSymmetricKey,
		SaltKey:         req.SaltKey,
		SaltAuth:        req.SaltAuth,
		SaltEnc:         req.SaltEnc,
		CreatedAt:       time.Now(),
	}

	if err := h.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			h.logger.WarnContext(ctx, "account already exists", slog.String("email", account.Email))
			sendError(h.logger, w, "email already registered", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", account.ID),
		slog.String("email", account.Email))

	w.WriteHeader(http.StatusCreated)
}

// LoginS обрабатывает POST /auth/login-s
// Первый шаг входа: по email возвращаются публичные соли аккаунта
func (h *AuthHandler) LoginS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login-s request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.accounts.GetAccountByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			h.logger.WarnContext(ctx, "login-s: account not found", slog.String("email", req.Email))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.LoginSResponse{
		SaltKey:  account.SaltKey,
		SaltAuth: account.SaltAuth,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// LoginA обрабатывает POST /auth/login-a
// Второй шаг входа: сервер строит свою половину SRP из verifier-а, отдает B
// и сохраняет handshake до шага M1
func (h *AuthHandler) LoginA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login-a request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := h.accounts.GetAccountByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			h.logger.WarnContext(ctx, "login-a: account not found", slog.String("email", req.Email))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	verifier, err := hex.DecodeString(account.Verifier)
	if err != nil {
		h.logger.ErrorContext(ctx, "stored verifier is not valid hex", slog.String("account_id", account.ID))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	serverSecret, err := srp.GenerateSecret()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate server secret", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	server := srp.NewServer(h.group, verifier, serverSecret)

	suffix, err := crypto.RandomHex(16)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate handshake id", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	handshakeID := "hsk_" + suffix

	// Серверная половина восстановима из verifier + serverSecret, поэтому
	// между шагами достаточно сохранить секрет и клиентское A.
	hs := &storage.Handshake{
		ID:           handshakeID,
		AccountID:    account.ID,
		SrpA:         req.SrpA,
		ServerSecret: hex.EncodeToString(serverSecret),
		CreatedAt:    time.Now(),
	}

	if err := h.handshakes.CreateHandshake(ctx, hs); err != nil {
		h.logger.ErrorContext(ctx, "failed to store handshake", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.LoginAResponse{
		SessionStarterID: handshakeID,
		SrpB:             hex.EncodeToString(server.B()),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// LoginM1 обрабатывает POST /auth/login-m1
// Третий шаг входа: проверка клиентского доказательства M1. Успех создает
// сессию с идентификатором, равным hex общего секрета K
func (h *AuthHandler) LoginM1(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginM1Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login-m1 request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	hs, err := h.handshakes.GetHandshake(ctx, req.SessionStarterID)
	if err != nil {
		if errors.Is(err, storage.ErrHandshakeNotFound) {
			h.logger.WarnContext(ctx, "login-m1: handshake not found", slog.String("handshake_id", req.SessionStarterID))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get handshake", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Одна попытка на handshake: удаляем сразу, до проверки доказательства
	if err := h.handshakes.DeleteHandshake(ctx, hs.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to delete handshake", slog.Any("error", err))
	}

	account, err := h.accounts.GetAccountByID(ctx, hs.AccountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get account for handshake", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	verifier, err := hex.DecodeString(account.Verifier)
	if err != nil {
		h.logger.ErrorContext(ctx, "stored verifier is not valid hex", slog.String("account_id", account.ID))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	serverSecret, err := hex.DecodeString(hs.ServerSecret)
	if err != nil {
		h.logger.ErrorContext(ctx, "stored server secret is not valid hex", slog.String("handshake_id", hs.ID))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	srpA, err := hex.DecodeString(hs.SrpA)
	if err != nil {
		h.logger.ErrorContext(ctx, "stored srp A is not valid hex", slog.String("handshake_id", hs.ID))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	m1, err := hex.DecodeString(req.SrpM1)
	if err != nil {
		sendError(h.logger, w, "srpM1 must be hex", http.StatusBadRequest)
		return
	}

	server := srp.NewServer(h.group, verifier, serverSecret)
	if err := server.SetA(srpA); err != nil {
		h.logger.WarnContext(ctx, "login-m1: bad client ephemeral", slog.Any("error", err))
		sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	m2, err := server.CheckM1(m1)
	if err != nil {
		h.logger.WarnContext(ctx, "login-m1: proof mismatch", slog.String("account_id", account.ID))
		sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	key, err := server.K()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get session key", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sess := &storage.Session{
		ID:        hex.EncodeToString(key),
		AccountID: account.ID,
		CreatedAt: time.Now(),
	}

	if err := h.sessions.CreateSession(ctx, sess); err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "login successful", slog.String("account_id", account.ID))

	resp := api.LoginM1Response{
		SrpM2: hex.EncodeToString(m2),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// WhoAmI обрабатывает GET /auth/whoami
// Возвращает метаданные аккаунта текущей сессии; ключи только в шифротексте
func (h *AuthHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	account, err := h.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.WhoAmIResponse{
		AccountID:       account.ID,
		Email:           account.Email,
		FirstName:       account.FirstName,
		LastName:        account.LastName,
		PublicKey:       account.PublicKey,
		EncPrivateKey:   account.EncPrivateKey,
		EncSymmetricKey: account.EncSymmetricKey,
		SaltEnc:         account.SaltEnc,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout обрабатывает POST /auth/logout
// Удаляет текущую сессию
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := GetSessionID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.DeleteSession(ctx, sessionID); err != nil {
		if !errors.Is(err, storage.ErrSessionNotFound) {
			h.logger.ErrorContext(ctx, "failed to delete session", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.logger.InfoContext(ctx, "session terminated")

	w.WriteHeader(http.StatusNoContent)
}
