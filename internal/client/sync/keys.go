package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	clientapi "github.com/restkeep/restkeep/internal/client/api"
	"github.com/restkeep/restkeep/internal/client/session"
	"github.com/restkeep/restkeep/internal/crypto"
	"github.com/restkeep/restkeep/internal/models"
	"github.com/restkeep/restkeep/pkg/api"
)

// keyring управляет ключами групп ресурсов: одна группа на корневой
// workspace, ключ группы живет на сервере только завернутым под публичные
// ключи участников. Расшифрованные ключи кешируются в памяти процесса.
type keyring struct {
	transport Transport
	sess      *session.Session

	mu   sync.Mutex
	keys map[string][]byte // groupID -> открытый симметричный ключ
}

func newKeyring(transport Transport, sess *session.Session) *keyring {
	return &keyring{
		transport: transport,
		sess:      sess,
		keys:      make(map[string][]byte),
	}
}

// groupIDForWorkspace выводит идентификатор группы из идентификатора
// workspace: группа создается лениво при первом пуше.
func groupIDForWorkspace(workspaceID string) string {
	return "grp_" + strings.TrimPrefix(workspaceID, "wrk_")
}

// keyFor возвращает открытый ключ группы: из кеша, либо с сервера с
// распаковкой приватным ключом аккаунта.
func (k *keyring) keyFor(ctx context.Context, groupID string) ([]byte, error) {
	k.mu.Lock()
	if key, ok := k.keys[groupID]; ok {
		k.mu.Unlock()
		return key, nil
	}
	k.mu.Unlock()

	group, err := k.transport.GetResourceGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resource group %s: %w", groupID, err)
	}

	key, err := crypto.UnwrapKey(k.sess.PrivateKey, group.EncSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap key of group %s: %w", groupID, err)
	}

	k.mu.Lock()
	k.keys[groupID] = key
	k.mu.Unlock()
	return key, nil
}

// ensureGroup возвращает ключ группы для workspace, создавая группу на
// сервере при первом обращении.
func (k *keyring) ensureGroup(ctx context.Context, workspaceID string) (string, []byte, error) {
	groupID := groupIDForWorkspace(workspaceID)

	key, err := k.keyFor(ctx, groupID)
	if err == nil {
		return groupID, key, nil
	}
	var apiErr *clientapi.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		return "", nil, err
	}

	// Группы еще нет: генерируем свежий ключ и регистрируем её,
	// завернув ключ под собственный публичный ключ
	key, err = crypto.GenerateSymmetricKey()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate group key: %w", err)
	}
	wrapped, err := crypto.WrapKeyForRecipient(k.sess.PublicKey, key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to wrap group key: %w", err)
	}
	err = k.transport.CreateResourceGroup(ctx, api.CreateResourceGroupRequest{
		ID:              groupID,
		Name:            workspaceID,
		EncSymmetricKey: wrapped,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create resource group: %w", err)
	}

	k.mu.Lock()
	k.keys[groupID] = key
	k.mu.Unlock()
	return groupID, key, nil
}

// encryptDoc заворачивает документ целиком в envelope под ключом группы.
func encryptDoc(doc *models.Document, groupID string, key []byte) (api.ResourceDoc, error) {
	plaintext, err := json.Marshal(doc)
	if err != nil {
		return api.ResourceDoc{}, fmt.Errorf("failed to marshal document: %w", err)
	}
	encContent, err := crypto.EncryptToString(key, plaintext, nil)
	if err != nil {
		return api.ResourceDoc{}, fmt.Errorf("failed to encrypt document: %w", err)
	}
	return api.ResourceDoc{
		ID:              doc.ID,
		Type:            doc.Type,
		ParentID:        doc.ParentID,
		ResourceGroupID: groupID,
		ETag:            docETag(doc),
		EncContent:      encContent,
	}, nil
}

// decryptDoc раскрывает encContent и переносит серверный etag в документ.
func decryptDoc(res api.ResourceDoc, key []byte) (*models.Document, error) {
	plaintext, err := crypto.DecryptFromString(key, res.EncContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt document %s: %w", res.ID, err)
	}
	var doc models.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", res.ID, err)
	}
	setETag(&doc, res.ETag)
	return &doc, nil
}

// docETag возвращает локальный etag документа; документ, который еще ни разу
// не был на сервере, представлен сигнальным значением.
func docETag(doc *models.Document) string {
	if doc.Payload != nil {
		if s, ok := doc.Payload["etag"].(string); ok && s != "" {
			return s
		}
	}
	return api.NoVersion
}

func setETag(doc *models.Document, etag string) {
	if doc.Payload == nil {
		doc.Payload = make(map[string]any)
	}
	doc.Payload["etag"] = etag
}
