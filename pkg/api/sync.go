package api

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NoVersion — сигнальный etag документа, который ещё ни разу не был на сервере.
const NoVersion = "__NO_VERSION__"

// Fingerprint — пара (id, etag) одного локального документа. На проводе
// сериализуется компактно, как двухэлементный массив ["id", "etag"].
type Fingerprint struct {
	ID   string
	ETag string
}

func (f Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{f.ID, f.ETag})
}

func (f *Fingerprint) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("fingerprint must be a JSON array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("fingerprint must have exactly 2 elements, got %d", len(pair))
	}
	f.ID, f.ETag = pair[0], pair[1]
	return nil
}

// SyncRequest — тело POST /sync: отпечатки всех синхронизируемых документов.
type SyncRequest []Fingerprint

// ResourceDoc — документ на проводе. Содержимое документа целиком лежит в
// encContent (AES-GCM envelope под ключом resource group); сервер видит
// только метаданные маршрутизации.
type ResourceDoc struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ParentID        string `json:"parentId"`
	ResourceGroupID string `json:"resourceGroupId"`
	ETag            string `json:"etag"`
	EncContent      string `json:"encContent"` // envelope JSON
}

func (d ResourceDoc) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Type, validation.Required),
		validation.Field(&d.ResourceGroupID, validation.Required),
		validation.Field(&d.EncContent, validation.Required),
	)
}

// SyncResponse — план выравнивания состояний для клиента. Клиент обязан
// применять секции строго в порядке: updated_docs, ids_to_remove, ids_to_push.
type SyncResponse struct {
	IDsToPush   []string      `json:"ids_to_push"`   // у сервера нет или устарело: клиент повторяет PUT
	IDsToRemove []string      `json:"ids_to_remove"` // удалены на сервере: клиент удаляет локально
	UpdatedDocs []ResourceDoc `json:"updated_docs"`  // версия сервера новее: клиент делает upsert
}

// CreateResourceGroupRequest регистрирует новую группу ресурсов; её
// симметричный ключ приходит завернутым под публичный ключ владельца.
type CreateResourceGroupRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	EncSymmetricKey string `json:"encSymmetricKey"` // hex, RSA-OAEP
}

func (r CreateResourceGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.EncSymmetricKey, validation.Required),
	)
}

// ResourceGroupResponse — группа ресурсов, как её видит участник.
type ResourceGroupResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	EncSymmetricKey string `json:"encSymmetricKey"` // завернут под публичный ключ запрашивающего
}
