package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/restkeep/restkeep/internal/server/storage"
	"github.com/restkeep/restkeep/pkg/api"
)

// TeamHandler обрабатывает команды и двухфазные приглашения.
// Сервер в приглашении только посредник: фаза A отдает приглашающему
// материал для перешифровки, фаза B принимает перезавернутые ключи.
type TeamHandler struct {
	logger   *slog.Logger
	teams    storage.TeamStorage
	groups   storage.GroupStorage
	accounts storage.AccountStorage
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(logger *slog.Logger, teams storage.TeamStorage, groups storage.GroupStorage, accounts storage.AccountStorage) *TeamHandler {
	return &TeamHandler{
		logger:   logger,
		teams:    teams,
		groups:   groups,
		accounts: accounts,
	}
}

// List обрабатывает GET /api/teams
// Возвращает команды текущего аккаунта
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	teams, err := h.teams.ListTeamsForAccount(ctx, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list teams", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.Team, 0, len(teams))
	for _, t := range teams {
		resp = append(resp, api.Team{ID: t.ID, Name: t.Name})
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// InviteA обрабатывает POST /api/teams/{id}/invite-a
// Первая фаза приглашения: по email приглашаемого возвращает его публичный
// ключ и ключи групп команды, завернутые под ключ приглашающего
func (h *TeamHandler) InviteA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	teamID := r.PathValue("id")
	if !h.requireTeamMember(ctx, w, teamID, accountID) {
		return
	}

	var req api.InviteARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode invite-a request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	invitee, err := h.accounts.GetAccountByEmail(ctx, strings.ToLower(req.InviteeEmail))
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			h.logger.WarnContext(ctx, "invitee not found", slog.String("email", req.InviteeEmail))
			sendError(h.logger, w, "account not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get invitee account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	groupIDs, err := h.teams.ListGroupIDs(ctx, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list team groups", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	keys := make([]api.ResourceGroupKey, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		_, encKey, err := h.groups.GetGroupForAccount(ctx, groupID, accountID)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to get inviter group key",
				slog.String("group_id", groupID),
				slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		keys = append(keys, api.ResourceGroupKey{
			ResourceGroupID: groupID,
			EncSymmetricKey: encKey,
		})
	}

	h.logger.InfoContext(ctx, "invite phase A",
		slog.String("team_id", teamID),
		slog.String("invitee_id", invitee.ID),
		slog.Int("group_keys", len(keys)))

	resp := api.InviteAResponse{
		AccountID:         invitee.ID,
		AccountPublicKey:  invitee.PublicKey,
		ResourceGroupKeys: keys,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// InviteB обрабатывает POST /api/teams/{id}/invite-b
// Вторая фаза: сохраняет ключи групп, перезавернутые под публичный ключ
// приглашаемого, и добавляет его в команду
func (h *TeamHandler) InviteB(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	teamID := r.PathValue("id")
	if !h.requireTeamMember(ctx, w, teamID, accountID) {
		return
	}

	var req api.InviteBRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode invite-b request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.accounts.GetAccountByID(ctx, req.AccountID); err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			sendError(h.logger, w, "account not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get invitee account", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	groupIDs, err := h.teams.ListGroupIDs(ctx, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list team groups", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	teamGroups := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		teamGroups[id] = true
	}

	// Приглашающий может раздать только группы своей команды
	for _, key := range req.ResourceGroupKeys {
		if !teamGroups[key.ResourceGroupID] {
			h.logger.WarnContext(ctx, "group does not belong to team",
				slog.String("team_id", teamID),
				slog.String("group_id", key.ResourceGroupID))
			sendError(h.logger, w, "group does not belong to team", http.StatusForbidden)
			return
		}
	}

	for _, key := range req.ResourceGroupKeys {
		if err := h.groups.AddMember(ctx, key.ResourceGroupID, req.AccountID, key.EncSymmetricKey); err != nil {
			h.logger.ErrorContext(ctx, "failed to add group member",
				slog.String("group_id", key.ResourceGroupID),
				slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	if err := h.teams.AddTeamMember(ctx, teamID, req.AccountID); err != nil {
		h.logger.ErrorContext(ctx, "failed to add team member", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "invite phase B complete",
		slog.String("team_id", teamID),
		slog.String("invitee_id", req.AccountID),
		slog.Int("group_keys", len(req.ResourceGroupKeys)))

	w.WriteHeader(http.StatusNoContent)
}

// requireTeamMember проверяет членство в команде. Пишет ответ и возвращает
// false, если доступ запрещен.
func (h *TeamHandler) requireTeamMember(ctx context.Context, w http.ResponseWriter, teamID, accountID string) bool {
	if teamID == "" {
		sendError(h.logger, w, "team id is required", http.StatusBadRequest)
		return false
	}

	member, err := h.teams.IsTeamMember(ctx, teamID, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to check team membership", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return false
	}
	if !member {
		h.logger.WarnContext(ctx, "account is not a team member",
			slog.String("team_id", teamID),
			slog.String("account_id", accountID))
		sendError(h.logger, w, "not a member of team", http.StatusForbidden)
		return false
	}
	return true
}
