package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/restkeep/restkeep/internal/server/storage"
	"github.com/restkeep/restkeep/pkg/api"
)

// GroupHandler обрабатывает группы ресурсов: регистрацию и выдачу
// завернутых ключей участникам
type GroupHandler struct {
	logger *slog.Logger
	groups storage.GroupStorage
}

// NewGroupHandler creates a new resource group handler
func NewGroupHandler(logger *slog.Logger, groups storage.GroupStorage) *GroupHandler {
	return &GroupHandler{
		logger: logger,
		groups: groups,
	}
}

// Create обрабатывает POST /api/resource_groups
// Регистрирует группу; ключ группы приходит уже завернутым под публичный
// ключ владельца, открытым сервер его не видит
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateResourceGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode resource group request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	group := &storage.ResourceGroup{
		ID:   req.ID,
		Name: req.Name,
	}

	if err := h.groups.CreateGroup(ctx, group, accountID, req.EncSymmetricKey); err != nil {
		if errors.Is(err, storage.ErrGroupExists) {
			h.logger.WarnContext(ctx, "resource group already exists", slog.String("group_id", req.ID))
			sendError(h.logger, w, "resource group already exists", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create resource group", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "resource group created",
		slog.String("group_id", group.ID),
		slog.String("account_id", accountID))

	resp := api.ResourceGroupResponse{
		ID:              group.ID,
		Name:            group.Name,
		EncSymmetricKey: req.EncSymmetricKey,
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Get обрабатывает GET /api/resource_groups/{id}
// Возвращает группу и ключ, завернутый под публичный ключ запрашивающего
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := r.PathValue("id")
	if groupID == "" {
		sendError(h.logger, w, "group id is required", http.StatusBadRequest)
		return
	}

	group, encKey, err := h.groups.GetGroupForAccount(ctx, groupID, accountID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrGroupNotFound):
			sendError(h.logger, w, "resource group not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrNotMember):
			h.logger.WarnContext(ctx, "account is not a group member",
				slog.String("group_id", groupID),
				slog.String("account_id", accountID))
			sendError(h.logger, w, "not a member of resource group", http.StatusForbidden)
		default:
			h.logger.ErrorContext(ctx, "failed to get resource group", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	resp := api.ResourceGroupResponse{
		ID:              group.ID,
		Name:            group.Name,
		EncSymmetricKey: encKey,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
