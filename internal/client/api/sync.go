package api

import (
	"context"
	"fmt"

	"github.com/restkeep/restkeep/pkg/api"
)

// Sync отправляет отпечатки локальных документов и получает план выравнивания.
func (c *Client) Sync(ctx context.Context, fingerprints api.SyncRequest) (*api.SyncResponse, error) {
	var resp api.SyncResponse
	if err := c.doRequest(ctx, "POST", "/sync", fingerprints, &resp); err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	return &resp, nil
}

// PutResource загружает зашифрованный документ. Сервер возвращает документ с
// присвоенным etag.
func (c *Client) PutResource(ctx context.Context, resourcePath string, doc api.ResourceDoc) (*api.ResourceDoc, error) {
	var resp api.ResourceDoc
	path := fmt.Sprintf("/%s/%s", resourcePath, doc.ID)
	if err := c.doRequest(ctx, "PUT", path, doc, &resp); err != nil {
		return nil, fmt.Errorf("put resource failed: %w", err)
	}
	return &resp, nil
}

// DeleteResource удаляет документ на сервере (оставляя tombstone).
func (c *Client) DeleteResource(ctx context.Context, resourcePath, id string) error {
	path := fmt.Sprintf("/%s/%s", resourcePath, id)
	if err := c.doRequest(ctx, "DELETE", path, nil, nil); err != nil {
		return fmt.Errorf("delete resource failed: %w", err)
	}
	return nil
}

// CreateResourceGroup регистрирует новую группу ресурсов.
func (c *Client) CreateResourceGroup(ctx context.Context, req api.CreateResourceGroupRequest) error {
	if err := c.doRequest(ctx, "POST", "/api/resource_groups", req, nil); err != nil {
		return fmt.Errorf("create resource group failed: %w", err)
	}
	return nil
}

// GetResourceGroup возвращает группу с ключом, завернутым под публичный ключ
// текущего аккаунта.
func (c *Client) GetResourceGroup(ctx context.Context, id string) (*api.ResourceGroupResponse, error) {
	var resp api.ResourceGroupResponse
	if err := c.doRequest(ctx, "GET", "/api/resource_groups/"+id, nil, &resp); err != nil {
		return nil, fmt.Errorf("get resource group failed: %w", err)
	}
	return &resp, nil
}
