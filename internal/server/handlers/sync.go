package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/restkeep/restkeep/internal/server/storage"
	"github.com/restkeep/restkeep/pkg/api"
)

// SyncHandler обрабатывает выравнивание состояний и записи документов
type SyncHandler struct {
	logger    *slog.Logger
	resources storage.ResourceStorage
	groups    storage.GroupStorage
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, resources storage.ResourceStorage, groups storage.GroupStorage) *SyncHandler {
	return &SyncHandler{
		logger:    logger,
		resources: resources,
		groups:    groups,
	}
}

// Sync обрабатывает POST /sync
// Клиент присылает отпечатки (id, etag) всех своих документов; сервер
// сравнивает их со своим состоянием и возвращает план выравнивания
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode sync request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	serverDocs, err := h.resources.ListResourcesForAccount(ctx, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list resources", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	byID := make(map[string]*storage.Resource, len(serverDocs))
	for _, res := range serverDocs {
		byID[res.ID] = res
	}

	resp := api.SyncResponse{
		IDsToPush:   []string{},
		IDsToRemove: []string{},
		UpdatedDocs: []api.ResourceDoc{},
	}

	seen := make(map[string]bool, len(req))
	for _, fp := range req {
		seen[fp.ID] = true

		res, exists := byID[fp.ID]
		switch {
		case !exists:
			// Сервер никогда не видел этот документ
			resp.IDsToPush = append(resp.IDsToPush, fp.ID)
		case res.Deleted:
			resp.IDsToRemove = append(resp.IDsToRemove, fp.ID)
		case res.ETag != fp.ETag:
			// Версии разошлись: значение сервера побеждает
			resp.UpdatedDocs = append(resp.UpdatedDocs, toResourceDoc(res))
		}
	}

	// Документы, о которых клиент не знает
	for _, res := range serverDocs {
		if seen[res.ID] || res.Deleted {
			continue
		}
		resp.UpdatedDocs = append(resp.UpdatedDocs, toResourceDoc(res))
	}

	h.logger.InfoContext(ctx, "sync plan computed",
		slog.String("account_id", accountID),
		slog.Int("fingerprints", len(req)),
		slog.Int("to_push", len(resp.IDsToPush)),
		slog.Int("to_remove", len(resp.IDsToRemove)),
		slog.Int("updated", len(resp.UpdatedDocs)))

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Upsert обрабатывает PUT /{collection}/{id}
// Принимает зашифрованный документ и назначает ему новый etag
func (h *SyncHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		sendError(h.logger, w, "resource id is required", http.StatusBadRequest)
		return
	}

	var doc api.ResourceDoc
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.logger.WarnContext(ctx, "failed to decode resource", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := doc.Validate(); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if doc.ID != id {
		sendError(h.logger, w, "resource id does not match path", http.StatusBadRequest)
		return
	}

	if !h.requireMembership(ctx, w, doc.ResourceGroupID, accountID) {
		return
	}

	res := &storage.Resource{
		ID:              doc.ID,
		Type:            doc.Type,
		ParentID:        doc.ParentID,
		ResourceGroupID: doc.ResourceGroupID,
		ETag:            uuid.New().String(),
		EncContent:      doc.EncContent,
		Deleted:         false,
		UpdatedAt:       time.Now(),
	}

	if err := h.resources.UpsertResource(ctx, res); err != nil {
		h.logger.ErrorContext(ctx, "failed to upsert resource", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "resource stored",
		slog.String("resource_id", res.ID),
		slog.String("resource_type", res.Type),
		slog.String("etag", res.ETag))

	sendJSON(h.logger, w, toResourceDoc(res), http.StatusOK)
}

// Delete обрабатывает DELETE /{collection}/{id}
// Документ не стирается, вместо него остается tombstone с новым etag,
// чтобы другие клиенты узнали об удалении при выравнивании
func (h *SyncHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := GetAccountID(ctx)
	if !ok {
		h.logger.Error("account id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		sendError(h.logger, w, "resource id is required", http.StatusBadRequest)
		return
	}

	res, err := h.resources.GetResource(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrResourceNotFound) {
			sendError(h.logger, w, "resource not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get resource", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !h.requireMembership(ctx, w, res.ResourceGroupID, accountID) {
		return
	}

	res.Deleted = true
	res.ETag = uuid.New().String()
	res.EncContent = ""
	res.UpdatedAt = time.Now()

	if err := h.resources.UpsertResource(ctx, res); err != nil {
		h.logger.ErrorContext(ctx, "failed to store tombstone", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "resource tombstoned", slog.String("resource_id", res.ID))

	w.WriteHeader(http.StatusNoContent)
}

// requireMembership проверяет, что аккаунт состоит в группе ресурсов.
// Пишет ответ и возвращает false, если доступ запрещен.
func (h *SyncHandler) requireMembership(ctx context.Context, w http.ResponseWriter, groupID, accountID string) bool {
	member, err := h.groups.IsMember(ctx, groupID, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to check group membership", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return false
	}
	if !member {
		h.logger.WarnContext(ctx, "account is not a group member",
			slog.String("group_id", groupID),
			slog.String("account_id", accountID))
		sendError(h.logger, w, "not a member of resource group", http.StatusForbidden)
		return false
	}
	return true
}

func toResourceDoc(res *storage.Resource) api.ResourceDoc {
	return api.ResourceDoc{
		ID:              res.ID,
		Type:            res.Type,
		ParentID:        res.ParentID,
		ResourceGroupID: res.ResourceGroupID,
		ETag:            res.ETag,
		EncContent:      res.EncContent,
	}
}
