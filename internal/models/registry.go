package models

// Document type tags. The registry below is the single dispatch table for
// everything kind-specific; no string checks belong anywhere else.
const (
	TypeWorkspace    = "workspace"
	TypeRequestGroup = "request_group"
	TypeRequest      = "request"
	TypeEnvironment  = "environment"
	TypeCookieJar    = "cookie_jar"
)

// Migration upgrades a payload from versions below Version. Apply must be
// pure and idempotent: re-applying to an already-migrated payload is a no-op.
type Migration struct {
	Apply   func(payload map[string]any)
	Version int
}

// Kind describes one document type: its id prefix, whether it requires a
// parent, its payload defaults and its schema migrations.
type Kind struct {
	Defaults      func() map[string]any
	Type          string
	Prefix        string
	Migrations    []Migration
	SchemaVersion int
	Parented      bool // requires a parentId on create
	SyncEligible  bool
}

var registry = map[string]*Kind{
	TypeWorkspace: {
		Type:          TypeWorkspace,
		Prefix:        "wrk_",
		Parented:      false,
		SyncEligible:  true,
		SchemaVersion: 1,
		Defaults: func() map[string]any {
			return map[string]any{
				"name":        "New Workspace",
				"description": "",
			}
		},
	},
	TypeRequestGroup: {
		Type:          TypeRequestGroup,
		Prefix:        "fld_",
		Parented:      true,
		SyncEligible:  true,
		SchemaVersion: 1,
		Defaults: func() map[string]any {
			return map[string]any{
				"name":        "New Folder",
				"environment": map[string]any{},
			}
		},
	},
	TypeRequest: {
		Type:          TypeRequest,
		Prefix:        "req_",
		Parented:      true,
		SyncEligible:  true,
		SchemaVersion: 2,
		Defaults: func() map[string]any {
			return map[string]any{
				"name":       "New Request",
				"method":     "GET",
				"url":        "",
				"body":       "",
				"headers":    []any{},
				"parameters": []any{},
			}
		},
		Migrations: []Migration{
			{
				// v2: query params moved from "params" to "parameters"
				Version: 2,
				Apply: func(payload map[string]any) {
					if legacy, ok := payload["params"]; ok {
						if _, exists := payload["parameters"]; !exists {
							payload["parameters"] = legacy
						}
						delete(payload, "params")
					}
				},
			},
		},
	},
	TypeEnvironment: {
		Type:          TypeEnvironment,
		Prefix:        "env_",
		Parented:      true,
		SyncEligible:  true,
		SchemaVersion: 1,
		Defaults: func() map[string]any {
			return map[string]any{
				"name": "Base Environment",
				"data": map[string]any{},
			}
		},
	},
	TypeCookieJar: {
		Type:          TypeCookieJar,
		Prefix:        "jar_",
		Parented:      true,
		SyncEligible:  true,
		SchemaVersion: 1,
		Defaults: func() map[string]any {
			return map[string]any{
				"name":    "Default Jar",
				"cookies": []any{},
			}
		},
	},
}

// kindTypes is the stable iteration order for AllTypes.
var kindTypes = []string{
	TypeWorkspace,
	TypeRequestGroup,
	TypeRequest,
	TypeEnvironment,
	TypeCookieJar,
}

// KindOf returns the registry entry for a type tag.
func KindOf(docType string) (*Kind, bool) {
	kind, ok := registry[docType]
	return kind, ok
}

// AllTypes returns every registered type tag in stable order.
func AllTypes() []string {
	out := make([]string, len(kindTypes))
	copy(out, kindTypes)
	return out
}
