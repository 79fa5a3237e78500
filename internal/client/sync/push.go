package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	clientapi "github.com/restkeep/restkeep/internal/client/api"
	"github.com/restkeep/restkeep/internal/client/store"
	"github.com/restkeep/restkeep/internal/models"
)

const (
	pushMaxRetries  = 5
	pushBackoffStep = 200 * time.Millisecond
)

// resourcePaths — серверный путь коллекции для каждого типа документа.
var resourcePaths = map[string]string{
	models.TypeWorkspace:    "workspaces",
	models.TypeRequestGroup: "request-groups",
	models.TypeRequest:      "requests",
	models.TypeEnvironment:  "environments",
	models.TypeCookieJar:    "cookie-jars",
}

// handleChange — слушатель шины изменений. Собственные записи сервиса
// (FromSync) и несинхронизируемые документы игнорируются; остальное уходит
// на сервер отсоединенной задачей.
func (s *Service) handleChange(ctx context.Context, e store.ChangeEvent) {
	if e.FromSync || !syncEligible(e.Doc) {
		return
	}

	doc := e.Doc.Clone()
	s.pushWG.Add(1)
	go func() {
		defer s.pushWG.Done()

		var err error
		switch e.Action {
		case store.ActionInsert, store.ActionUpdate:
			err = s.pushDoc(ctx, doc)
		case store.ActionRemove:
			err = s.deleteDoc(ctx, doc)
		}
		if err != nil {
			s.logger.Error("reactive push failed",
				"id", doc.ID, "action", string(e.Action), "error", err)
		}
	}()
}

// pushDoc шифрует документ и загружает его PUT-ом; ответ сервера с новым
// etag записывается обратно в хранилище, чтобы локальный отпечаток совпал
// с серверным.
func (s *Service) pushDoc(ctx context.Context, doc *models.Document) error {
	path, ok := resourcePaths[doc.Type]
	if !ok {
		return fmt.Errorf("no resource path for type %q", doc.Type)
	}

	groupID, key, err := s.groupForDoc(ctx, doc)
	if err != nil {
		return err
	}
	wire, err := encryptDoc(doc, groupID, key)
	if err != nil {
		return err
	}

	var updated *models.Document
	err = retry.Do(ctx, pushBackoff(), func(ctx context.Context) error {
		resp, err := s.transport.PutResource(ctx, path, wire)
		if err != nil {
			return retryIfGatewayError(err)
		}
		updated, err = decryptDoc(*resp, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", path, doc.ID, err)
	}

	if _, err := s.store.Upsert(ctx, updated, true); err != nil {
		return fmt.Errorf("failed to write back %s: %w", doc.ID, err)
	}
	return nil
}

// deleteDoc удаляет документ на сервере.
func (s *Service) deleteDoc(ctx context.Context, doc *models.Document) error {
	path, ok := resourcePaths[doc.Type]
	if !ok {
		return fmt.Errorf("no resource path for type %q", doc.Type)
	}

	err := retry.Do(ctx, pushBackoff(), func(ctx context.Context) error {
		return retryIfGatewayError(s.transport.DeleteResource(ctx, path, doc.ID))
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", path, doc.ID, err)
	}
	return nil
}

// groupForDoc находит корневой workspace документа и возвращает ключ его
// группы ресурсов.
func (s *Service) groupForDoc(ctx context.Context, doc *models.Document) (string, []byte, error) {
	workspaceID := doc.ID
	if doc.Type != models.TypeWorkspace {
		chain, err := s.store.WithAncestors(ctx, doc)
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve ancestors of %s: %w", doc.ID, err)
		}
		workspaceID = ""
		for _, d := range chain {
			if d.Type == models.TypeWorkspace {
				workspaceID = d.ID
				break
			}
		}
		if workspaceID == "" {
			return "", nil, fmt.Errorf("document %s has no workspace root", doc.ID)
		}
	}
	return s.keys.ensureGroup(ctx, workspaceID)
}

// pushBackoff — линейная пауза attempt*200ms, не больше пяти повторов.
func pushBackoff() retry.Backoff {
	attempt := 0
	return retry.WithMaxRetries(pushMaxRetries, retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * pushBackoffStep, false
	}))
}

// retryIfGatewayError помечает 502 как повторяемую ошибку; все остальное
// фатально для этого пуша.
func retryIfGatewayError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *clientapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadGateway {
		return retry.RetryableError(err)
	}
	return err
}
