package storage

import (
	"context"
	"time"
)

// Resource — зашифрованный документ на сервере. Содержимое лежит в
// EncContent; сервер оперирует только метаданными маршрутизации и etag-ами.
// Удаление оставляет tombstone, чтобы другие клиенты узнали о нем при
// выравнивании.
type Resource struct {
	ID              string
	Type            string
	ParentID        string
	ResourceGroupID string
	ETag            string
	EncContent      string
	Deleted         bool
	UpdatedAt       time.Time
}

// ResourceStorage persists encrypted documents
type ResourceStorage interface {
	// UpsertResource creates or replaces a resource (including tombstones)
	UpsertResource(ctx context.Context, res *Resource) error

	// GetResource retrieves a resource by id
	// Returns ErrResourceNotFound if it doesn't exist
	GetResource(ctx context.Context, id string) (*Resource, error)

	// ListResourcesForAccount returns every resource (tombstones included)
	// in groups the account is a member of
	ListResourcesForAccount(ctx context.Context, accountID string) ([]*Resource, error)
}

// ResourceGroup — группа ресурсов: единица раздачи ключей.
type ResourceGroup struct {
	ID   string
	Name string
}

// GroupStorage persists resource groups and per-member wrapped keys
type GroupStorage interface {
	// CreateGroup registers a group and its owner's wrapped key
	// Returns ErrGroupExists if the id is already taken
	CreateGroup(ctx context.Context, group *ResourceGroup, accountID, encSymmetricKey string) error

	// GetGroupForAccount returns the group and the key wrapped for the
	// given member. Returns ErrGroupNotFound or ErrNotMember
	GetGroupForAccount(ctx context.Context, groupID, accountID string) (*ResourceGroup, string, error)

	// AddMember grants an account access to a group with a key wrapped
	// under that account's public key
	AddMember(ctx context.Context, groupID, accountID, encSymmetricKey string) error

	// IsMember reports whether the account belongs to the group
	IsMember(ctx context.Context, groupID, accountID string) (bool, error)
}
