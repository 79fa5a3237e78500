package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restkeep/restkeep/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "docs.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustInsert(t *testing.T, s *Store, docType, id, parentID string, payload map[string]any) *models.Document {
	t.Helper()

	doc := &models.Document{ID: id, Type: docType, ParentID: parentID, Payload: payload}
	inserted, err := s.Insert(context.Background(), doc, false)
	require.NoError(t, err)
	return inserted
}

func TestInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := mustInsert(t, s, models.TypeWorkspace, "", "", map[string]any{"name": "Team API"})
	assert.NotEmpty(t, doc.ID)

	got, err := s.Get(ctx, models.TypeWorkspace, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team API", got.Payload["name"])
	assert.Equal(t, "", got.Payload["description"], "дефолты дозаполняются при чтении")
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), models.TypeRequest, "req_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := mustInsert(t, s, models.TypeWorkspace, "", "", map[string]any{"name": "Team API"})
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "повторный Close безвреден")

	_, err := s.Get(ctx, models.TypeWorkspace, doc.ID)
	require.ErrorIs(t, err, ErrStoreClosed)

	_, err = s.Find(ctx, models.TypeWorkspace, nil)
	require.ErrorIs(t, err, ErrStoreClosed)

	_, err = s.Insert(ctx, &models.Document{Type: models.TypeWorkspace}, false)
	require.ErrorIs(t, err, ErrStoreClosed)

	err = s.Remove(ctx, doc, false)
	require.ErrorIs(t, err, ErrStoreClosed)
}

func TestInsert_ValidationErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		doc  *models.Document
	}{
		{
			name: "unknown type",
			doc:  &models.Document{Type: "response"},
		},
		{
			name: "parented type without parentId",
			doc:  &models.Document{Type: models.TypeRequest},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Insert(ctx, tt.doc, false)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestFindByParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wrk := mustInsert(t, s, models.TypeWorkspace, "", "", nil)
	mustInsert(t, s, models.TypeRequest, "", wrk.ID, map[string]any{"name": "r1"})
	mustInsert(t, s, models.TypeRequest, "", wrk.ID, map[string]any{"name": "r2"})
	mustInsert(t, s, models.TypeRequest, "", "fld_other", map[string]any{"name": "r3"})

	docs, err := s.Find(ctx, models.TypeRequest, Query{"parentId": wrk.ID})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	count, err := s.Count(ctx, models.TypeRequest, Query{"parentId": wrk.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestChangeEventsFireSynchronouslyAfterPersist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var events []ChangeEvent
	s.Subscribe("test", func(e ChangeEvent) {
		events = append(events, e)
		// Документ уже должен быть в хранилище, когда слушатель его видит
		got, err := s.Get(ctx, e.Doc.Type, e.Doc.ID)
		if e.Action != ActionRemove {
			require.NoError(t, err)
			require.NotNil(t, got)
		}
	})

	doc := mustInsert(t, s, models.TypeWorkspace, "", "", nil)
	require.Len(t, events, 1)
	assert.Equal(t, ActionInsert, events[0].Action)

	_, err := s.Patch(ctx, doc, map[string]any{"name": "renamed"}, false)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionUpdate, events[1].Action)
	assert.Equal(t, "renamed", events[1].Doc.Payload["name"])

	require.NoError(t, s.Remove(ctx, doc, false))
	require.Len(t, events, 3)
	assert.Equal(t, ActionRemove, events[2].Action)
}

func TestSubscribeIsIdempotentByKey(t *testing.T) {
	s := newTestStore(t)

	first, second := 0, 0
	s.Subscribe("sync", func(ChangeEvent) { first++ })
	s.Subscribe("sync", func(ChangeEvent) { second++ })

	mustInsert(t, s, models.TypeWorkspace, "", "", nil)
	assert.Zero(t, first, "повторная регистрация заменяет слушателя")
	assert.Equal(t, 1, second)

	s.Unsubscribe("sync")
	s.Unsubscribe("sync") // идемпотентно
	mustInsert(t, s, models.TypeWorkspace, "", "", nil)
	assert.Equal(t, 1, second)
}

func TestWithDescendants(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wrk := mustInsert(t, s, models.TypeWorkspace, "wrk_1", "", nil)
	fld := mustInsert(t, s, models.TypeRequestGroup, "fld_1", "wrk_1", nil)
	mustInsert(t, s, models.TypeRequest, "req_1", "fld_1", nil)
	mustInsert(t, s, models.TypeRequest, "req_2", "fld_1", nil)
	mustInsert(t, s, models.TypeEnvironment, "env_1", "wrk_1", nil)

	docs, err := s.WithDescendants(ctx, wrk)
	require.NoError(t, err)
	ids := docIDs(docs)
	assert.ElementsMatch(t, []string{"wrk_1", "fld_1", "req_1", "req_2", "env_1"}, ids)

	// Поддерево от папки
	docs, err = s.WithDescendants(ctx, fld)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fld_1", "req_1", "req_2"}, docIDs(docs))

	// nil = весь лес от корней
	docs, err = s.WithDescendants(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestWithAncestors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, models.TypeWorkspace, "wrk_1", "", nil)
	mustInsert(t, s, models.TypeRequestGroup, "fld_1", "wrk_1", nil)
	req := mustInsert(t, s, models.TypeRequest, "req_1", "fld_1", nil)

	docs, err := s.WithAncestors(ctx, req)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "req_1", docs[0].ID)
	assert.Equal(t, "fld_1", docs[1].ID)
	assert.Equal(t, "wrk_1", docs[2].ID)
}

func TestRemoveCascading(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, models.TypeWorkspace, "wrk_1", "", nil)
	fld := mustInsert(t, s, models.TypeRequestGroup, "fld_1", "wrk_1", nil)
	mustInsert(t, s, models.TypeRequest, "req_1", "fld_1", nil)
	mustInsert(t, s, models.TypeRequest, "req_2", "fld_1", nil)

	var removed []string
	s.Subscribe("test", func(e ChangeEvent) {
		require.Equal(t, ActionRemove, e.Action)
		removed = append(removed, e.Doc.ID)
	})

	require.NoError(t, s.RemoveCascading(ctx, fld, false))

	// Одно remove-событие на каждый удаленный документ
	assert.ElementsMatch(t, []string{"fld_1", "req_1", "req_2"}, removed)

	// Остался только workspace
	_, err := s.Get(ctx, models.TypeWorkspace, "wrk_1")
	assert.NoError(t, err)
	for _, id := range []string{"req_1", "req_2"} {
		_, err := s.Get(ctx, models.TypeRequest, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	_, err = s.Get(ctx, models.TypeRequestGroup, "fld_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{ID: "wrk_up", Type: models.TypeWorkspace, Payload: map[string]any{"name": "v1"}}
	_, err := s.Upsert(ctx, doc, true)
	require.NoError(t, err)

	doc2 := &models.Document{ID: "wrk_up", Type: models.TypeWorkspace, Payload: map[string]any{"name": "v2"}}
	_, err = s.Upsert(ctx, doc2, true)
	require.NoError(t, err)

	got, err := s.Get(ctx, models.TypeWorkspace, "wrk_up")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Payload["name"])

	count, err := s.Count(ctx, models.TypeWorkspace, Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListenerMayReenterStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Слушатель читает хранилище во время доставки события
	s.Subscribe("reader", func(e ChangeEvent) {
		_, err := s.Find(ctx, models.TypeWorkspace, Query{})
		assert.NoError(t, err)
	})

	mustInsert(t, s, models.TypeWorkspace, "", "", nil)
}

func docIDs(docs []*models.Document) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}
