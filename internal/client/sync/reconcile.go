package sync

import (
	"context"
	"fmt"

	"github.com/restkeep/restkeep/internal/models"
	"github.com/restkeep/restkeep/pkg/api"
)

// ReconciliationInvariantError — фатальный сбой цикла: сервер сослался на
// документ, которого не было в снимке отпечатков. Это означает, что снимок
// и фаза применения видели разные локальные состояния.
type ReconciliationInvariantError struct {
	ID  string
	Set string // секция ответа, в которой встретился id
}

func (e *ReconciliationInvariantError) Error() string {
	return fmt.Sprintf("reconciliation invariant violated: document %s from %s is missing from the fingerprint snapshot", e.ID, e.Set)
}

// reconcile выполняет один цикл полного выравнивания состояний.
func (s *Service) reconcile(ctx context.Context) error {
	// 1. Снимок: отпечатки всех синхронизируемых документов
	snapshot, fingerprints, err := s.collectFingerprints(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect fingerprints: %w", err)
	}

	// 2. План выравнивания от сервера
	plan, err := s.transport.Sync(ctx, fingerprints)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}

	s.logger.Debug("reconciliation plan",
		"updated", len(plan.UpdatedDocs),
		"removed", len(plan.IDsToRemove),
		"push", len(plan.IDsToPush))

	// 3. Применяем под буфером: слушатели увидят весь цикл одним пакетом.
	// Порядок секций обязателен: сначала upsert-ы сервера, затем удаления,
	// затем повторные пуши — иначе удаление может воскресить документ.
	bufferID, bufErr := s.store.BufferChangesIndefinitely()
	if bufErr != nil {
		s.logger.Warn("change buffer unavailable", "error", bufErr)
	}
	applyErr := s.applyPlan(ctx, snapshot, plan)
	if bufErr == nil {
		if err := s.store.FlushChanges(bufferID, false); err != nil {
			s.logger.Error("failed to flush change buffer", "error", err)
		}
	}
	return applyErr
}

func (s *Service) collectFingerprints(ctx context.Context) (map[string]*models.Document, api.SyncRequest, error) {
	snapshot := make(map[string]*models.Document)
	var fingerprints api.SyncRequest

	for _, docType := range models.AllTypes() {
		docs, err := s.store.Find(ctx, docType, nil)
		if err != nil {
			return nil, nil, err
		}
		for _, doc := range docs {
			if !syncEligible(doc) {
				continue
			}
			snapshot[doc.ID] = doc
			fingerprints = append(fingerprints, api.Fingerprint{ID: doc.ID, ETag: docETag(doc)})
		}
	}
	if fingerprints == nil {
		fingerprints = api.SyncRequest{}
	}
	return snapshot, fingerprints, nil
}

func (s *Service) applyPlan(ctx context.Context, snapshot map[string]*models.Document, plan *api.SyncResponse) error {
	// Секция 1: версии сервера. Сервер всегда побеждает; один битый
	// документ не должен ронять весь цикл.
	updated := make(map[string]bool, len(plan.UpdatedDocs))
	for _, res := range plan.UpdatedDocs {
		if err := s.applyUpdated(ctx, res); err != nil {
			s.logger.Error("failed to apply server document", "id", res.ID, "error", err)
			continue
		}
		updated[res.ID] = true
	}

	// Секция 2: удаленное на сервере. Документ, только что пришедший в
	// updated_docs, не удаляется: версия из updated_docs всегда побеждает.
	for _, id := range plan.IDsToRemove {
		doc, ok := snapshot[id]
		if !ok {
			return &ReconciliationInvariantError{ID: id, Set: "ids_to_remove"}
		}
		if updated[id] {
			s.logger.Debug("skipping removal of freshly updated document", "id", id)
			continue
		}
		if err := s.store.Remove(ctx, doc, true); err != nil {
			s.logger.Error("failed to remove document", "id", id, "error", err)
		}
	}

	// Секция 3: повторные пуши устаревшего на сервере
	for _, id := range plan.IDsToPush {
		doc, ok := snapshot[id]
		if !ok {
			return &ReconciliationInvariantError{ID: id, Set: "ids_to_push"}
		}
		if err := s.pushDoc(ctx, doc); err != nil {
			s.logger.Error("failed to push document", "id", id, "error", err)
		}
	}

	return nil
}

func (s *Service) applyUpdated(ctx context.Context, res api.ResourceDoc) error {
	key, err := s.keys.keyFor(ctx, res.ResourceGroupID)
	if err != nil {
		return err
	}
	doc, err := decryptDoc(res, key)
	if err != nil {
		return err
	}
	if _, err := s.store.Upsert(ctx, doc, true); err != nil {
		return err
	}
	return nil
}
