// Package store implements the local transactional document store: typed
// CRUD over bbolt buckets, parent/child queries across the whole document
// forest, a synchronous change-notification bus and a rollback-capable
// change buffer.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/restkeep/restkeep/internal/models"
)

// Query matches documents by equality on meta fields (_id, type, parentId,
// isPrivate) or payload fields.
type Query map[string]any

// Store is the single source of truth for local documents. One bbolt bucket
// per registered document type, JSON-encoded values.
type Store struct {
	db          *bbolt.DB
	logger      *slog.Logger
	listeners   map[string]Listener
	bufferQueue []ChangeEvent
	bufferID    string
	closed      bool
	mu          sync.Mutex
}

// Open opens (or creates) the store at path and ensures one bucket per
// registered document type.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	s := &Store{
		db:        db,
		logger:    logger,
		listeners: map[string]Listener{},
	}

	// Создаем bucket для каждого зарегистрированного типа документов
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, docType := range models.AllTypes() {
			if _, err := tx.CreateBucketIfNotExists([]byte(docType)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", docType, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database. Subsequent operations return
// ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ensureOpen стоит на входе каждой операции чтения/записи.
func (s *Store) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// DB returns the underlying bbolt handle so sibling components (session
// store) can keep their buckets in the same file.
func (s *Store) DB() *bbolt.DB {
	return s.db
}

// Find returns all documents of a type matching the query, default-filled,
// sorted by creation time.
func (s *Store) Find(ctx context.Context, docType string, query Query) ([]*models.Document, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if _, ok := models.KindOf(docType); !ok {
		return nil, &ValidationError{DocType: docType, Field: "type", Reason: "is not registered"}
	}

	var docs []*models.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(docType))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", docType)
		}

		return bucket.ForEach(func(k, v []byte) error {
			doc := &models.Document{}
			if err := json.Unmarshal(v, doc); err != nil {
				return fmt.Errorf("failed to unmarshal document %s: %w", k, err)
			}
			if matches(doc, query) {
				docs = append(docs, doc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Старые записи дозаполняются дефолтами при чтении
	for _, doc := range docs {
		if err := models.Init(doc); err != nil {
			return nil, err
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Created != docs[j].Created {
			return docs[i].Created < docs[j].Created
		}
		return docs[i].ID < docs[j].ID
	})

	return docs, nil
}

// Get returns a single document by id, default-filled.
// Returns ErrNotFound if the document doesn't exist.
func (s *Store) Get(ctx context.Context, docType, id string) (*models.Document, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if _, ok := models.KindOf(docType); !ok {
		return nil, &ValidationError{DocType: docType, Field: "type", Reason: "is not registered"}
	}
	if id == "" {
		return nil, ErrNotFound
	}

	var doc *models.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(docType))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", docType)
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}

		doc = &models.Document{}
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("failed to unmarshal document %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := models.Init(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Count returns the number of documents of a type matching the query.
func (s *Store) Count(ctx context.Context, docType string, query Query) (int, error) {
	docs, err := s.Find(ctx, docType, query)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Insert persists a new document and fires exactly one insert event.
// The document is validated and default-filled first; a generated id is
// assigned when missing.
func (s *Store) Insert(ctx context.Context, doc *models.Document, fromSync bool) (*models.Document, error) {
	if err := s.validate(doc); err != nil {
		return nil, err
	}
	if err := models.Init(doc); err != nil {
		return nil, err
	}

	if err := s.put(doc); err != nil {
		return nil, err
	}

	s.notify(ChangeEvent{Action: ActionInsert, Doc: doc.Clone(), FromSync: fromSync})
	return doc, nil
}

// Update persists the full document as given (plus default fill) and fires
// exactly one update event. Used directly by the sync client when the server
// copy must win verbatim.
func (s *Store) Update(ctx context.Context, doc *models.Document, fromSync bool) (*models.Document, error) {
	if err := s.validate(doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, &ValidationError{DocType: doc.Type, Field: "_id", Reason: "is required for update"}
	}
	if err := models.Init(doc); err != nil {
		return nil, err
	}

	if err := s.put(doc); err != nil {
		return nil, err
	}

	s.notify(ChangeEvent{Action: ActionUpdate, Doc: doc.Clone(), FromSync: fromSync})
	return doc, nil
}

// Patch merges payload fields into an existing document, bumps its modified
// timestamp and persists it. patch["modified"] wins over the bump when set.
func (s *Store) Patch(ctx context.Context, doc *models.Document, patch map[string]any, fromSync bool) (*models.Document, error) {
	updated := doc.Clone()
	updated.Modified = time.Now().UnixMilli()
	for k, v := range patch {
		switch k {
		case "parentId":
			if p, ok := v.(string); ok {
				updated.ParentID = p
			}
		case "modified":
			updated.Modified = toMillis(v)
		default:
			updated.Payload[k] = v
		}
	}
	return s.Update(ctx, updated, fromSync)
}

// Upsert inserts or updates depending on whether the id already exists.
func (s *Store) Upsert(ctx context.Context, doc *models.Document, fromSync bool) (*models.Document, error) {
	if doc.ID == "" {
		return s.Insert(ctx, doc, fromSync)
	}
	_, err := s.Get(ctx, doc.Type, doc.ID)
	switch {
	case err == nil:
		return s.Update(ctx, doc, fromSync)
	case errors.Is(err, ErrNotFound):
		return s.Insert(ctx, doc, fromSync)
	default:
		return nil, err
	}
}

// Remove deletes a single document and fires exactly one remove event.
// Descendants are untouched; use RemoveCascading for subtree deletion.
func (s *Store) Remove(ctx context.Context, doc *models.Document, fromSync bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if _, ok := models.KindOf(doc.Type); !ok {
		return &ValidationError{DocType: doc.Type, Field: "type", Reason: "is not registered"}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(doc.Type))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", doc.Type)
		}
		return bucket.Delete([]byte(doc.ID))
	})
	if err != nil {
		return fmt.Errorf("failed to remove document %s: %w", doc.ID, err)
	}

	s.notify(ChangeEvent{Action: ActionRemove, Doc: doc.Clone(), FromSync: fromSync})
	return nil
}

// WithDescendants expands breadth-first from doc (or from the forest roots
// when doc is nil) across all registered types and returns the transitive
// closure. Each round reads a fresh snapshot, so a write landing mid-walk
// cannot corrupt the accumulator; the walk terminates when a round finds no
// new children.
func (s *Store) WithDescendants(ctx context.Context, doc *models.Document) ([]*models.Document, error) {
	var result []*models.Document
	seen := map[string]bool{}

	var frontier []string
	if doc != nil {
		result = append(result, doc)
		seen[doc.ID] = true
		frontier = []string{doc.ID}
	} else {
		frontier = []string{""}
	}

	for len(frontier) > 0 {
		var next []string
		for _, parentID := range frontier {
			for _, docType := range models.AllTypes() {
				children, err := s.Find(ctx, docType, Query{"parentId": parentID})
				if err != nil {
					return nil, err
				}
				for _, child := range children {
					if seen[child.ID] {
						continue
					}
					seen[child.ID] = true
					result = append(result, child)
					next = append(next, child.ID)
				}
			}
		}
		frontier = next
	}

	return result, nil
}

// WithAncestors walks parentId links up to the forest root, returning doc
// first. Needed to find the workspace a document belongs to.
func (s *Store) WithAncestors(ctx context.Context, doc *models.Document) ([]*models.Document, error) {
	if doc == nil {
		return nil, nil
	}

	result := []*models.Document{doc}
	seen := map[string]bool{doc.ID: true}
	current := doc

	for current.ParentID != "" {
		var parent *models.Document
		for _, docType := range models.AllTypes() {
			p, err := s.Get(ctx, docType, current.ParentID)
			if err == nil {
				parent = p
				break
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		if parent == nil || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		result = append(result, parent)
		current = parent
	}

	return result, nil
}

// RemoveCascading deletes doc and every transitive descendant, firing one
// remove event per deleted document. Listeners must be prepared for a
// remove burst.
func (s *Store) RemoveCascading(ctx context.Context, doc *models.Document, fromSync bool) error {
	docs, err := s.WithDescendants(ctx, doc)
	if err != nil {
		return err
	}

	for _, d := range docs {
		if err := s.Remove(ctx, d, fromSync); err != nil {
			return err
		}
	}
	return nil
}

// validate fails fast with a ValidationError before any persistence attempt.
func (s *Store) validate(doc *models.Document) error {
	kind, ok := models.KindOf(doc.Type)
	if !ok {
		return &ValidationError{DocType: doc.Type, Field: "type", Reason: "is not registered"}
	}
	if kind.Parented && doc.ParentID == "" {
		return &ValidationError{DocType: doc.Type, Field: "parentId", Reason: "is required"}
	}
	return nil
}

func (s *Store) put(doc *models.Document) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(doc.Type))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", doc.Type)
		}
		return bucket.Put([]byte(doc.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist document %s: %w", doc.ID, err)
	}
	return nil
}

func matches(doc *models.Document, query Query) bool {
	for key, want := range query {
		var got any
		switch key {
		case "_id":
			got = doc.ID
		case "type":
			got = doc.Type
		case "parentId":
			got = doc.ParentID
		case "isPrivate":
			got = doc.IsPrivate
		default:
			got = doc.Payload[key]
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func toMillis(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return time.Now().UnixMilli()
	}
}
