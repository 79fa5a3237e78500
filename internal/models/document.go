// Package models defines the document kinds that make up a workspace forest
// and the dispatch table used to default-fill, validate and migrate them.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Meta field names shared by every document kind. Everything else in a
// document is kind-specific payload.
const (
	fieldID            = "_id"
	fieldType          = "type"
	fieldParentID      = "parentId"
	fieldCreated       = "created"
	fieldModified      = "modified"
	fieldSchemaVersion = "schemaVersion"
	fieldIsPrivate     = "isPrivate"
)

// Document is a generic record in the hierarchical store. The payload keeps
// kind-specific fields; meta fields live on the struct. Documents of all
// kinds together form a forest linked by ParentID.
type Document struct {
	Payload       map[string]any
	ID            string
	Type          string
	ParentID      string // empty means "root of the workspace forest"
	Created       int64  // unix millis
	Modified      int64  // unix millis
	SchemaVersion int
	IsPrivate     bool // private docs never sync
}

// NewID возвращает новый идентификатор документа с префиксом его типа,
// например req_0a1b2c... Неизвестный тип дает пустую строку.
func NewID(docType string) string {
	kind, ok := KindOf(docType)
	if !ok {
		return ""
	}
	return kind.Prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Clone returns a deep-enough copy: meta by value, payload re-marshalled.
// Listeners may mutate the documents they receive.
func (d *Document) Clone() *Document {
	out := *d
	if d.Payload != nil {
		out.Payload = make(map[string]any, len(d.Payload))
		raw, err := json.Marshal(d.Payload)
		if err == nil {
			_ = json.Unmarshal(raw, &out.Payload)
		}
	}
	return &out
}

// SyncEligible reports whether this document participates in sync.
func (d *Document) SyncEligible() bool {
	kind, ok := KindOf(d.Type)
	if !ok {
		return false
	}
	return kind.SyncEligible && !d.IsPrivate
}

// MarshalJSON flattens meta fields and payload into a single object, the
// shape documents have on disk and on the wire.
func (d *Document) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(d.Payload)+7)
	for k, v := range d.Payload {
		flat[k] = v
	}
	flat[fieldID] = d.ID
	flat[fieldType] = d.Type
	flat[fieldCreated] = d.Created
	flat[fieldModified] = d.Modified
	flat[fieldSchemaVersion] = d.SchemaVersion
	if d.ParentID != "" {
		flat[fieldParentID] = d.ParentID
	} else {
		flat[fieldParentID] = nil
	}
	if d.IsPrivate {
		flat[fieldIsPrivate] = true
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat object back into meta fields and payload.
func (d *Document) UnmarshalJSON(data []byte) error {
	flat := map[string]any{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	d.ID, _ = flat[fieldID].(string)
	d.Type, _ = flat[fieldType].(string)
	if p, ok := flat[fieldParentID].(string); ok {
		d.ParentID = p
	} else {
		d.ParentID = ""
	}
	d.Created = toInt64(flat[fieldCreated])
	d.Modified = toInt64(flat[fieldModified])
	d.SchemaVersion = int(toInt64(flat[fieldSchemaVersion]))
	d.IsPrivate, _ = flat[fieldIsPrivate].(bool)

	delete(flat, fieldID)
	delete(flat, fieldType)
	delete(flat, fieldParentID)
	delete(flat, fieldCreated)
	delete(flat, fieldModified)
	delete(flat, fieldSchemaVersion)
	delete(flat, fieldIsPrivate)
	d.Payload = flat

	return nil
}

// Init default-fills, migrates and stamps a document in place:
// id generated when empty, timestamps set when zero, migrations applied in
// order, kind defaults merged UNDER any persisted payload fields so old
// records degrade gracefully when the schema grows.
func Init(doc *Document) error {
	kind, ok := KindOf(doc.Type)
	if !ok {
		return fmt.Errorf("unknown document type %q", doc.Type)
	}

	if doc.ID == "" {
		doc.ID = NewID(doc.Type)
	}
	now := time.Now().UnixMilli()
	if doc.Created == 0 {
		doc.Created = now
	}
	if doc.Modified == 0 {
		doc.Modified = now
	}
	if doc.Payload == nil {
		doc.Payload = map[string]any{}
	}

	// Миграции чистые и идемпотентные: повторное применение - no-op
	for _, m := range kind.Migrations {
		if doc.SchemaVersion < m.Version {
			m.Apply(doc.Payload)
			doc.SchemaVersion = m.Version
		}
	}
	if doc.SchemaVersion < kind.SchemaVersion {
		doc.SchemaVersion = kind.SchemaVersion
	}

	// Дефолты под сохраненными полями
	for k, v := range kind.Defaults() {
		if _, exists := doc.Payload[k]; !exists {
			doc.Payload[k] = v
		}
	}

	return nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
