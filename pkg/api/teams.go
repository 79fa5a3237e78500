package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Team — команда, разделяющая группы ресурсов.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResourceGroupKey — ключ группы ресурсов, завернутый под публичный ключ
// конкретного аккаунта.
type ResourceGroupKey struct {
	ResourceGroupID string `json:"resourceGroupId"`
	EncSymmetricKey string `json:"encSymmetricKey"` // hex, RSA-OAEP
}

// InviteARequest — первая фаза приглашения: кого зовём.
type InviteARequest struct {
	InviteeEmail string `json:"inviteeEmail"`
}

func (r InviteARequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InviteeEmail, validation.Required, is.EmailFormat),
	)
}

// InviteAResponse — материал для перешифровки: публичный ключ приглашаемого
// и ключи групп команды, завернутые под ключ приглашающего.
type InviteAResponse struct {
	AccountID         string             `json:"accountId"`
	AccountPublicKey  string             `json:"accountPublicKey"`
	ResourceGroupKeys []ResourceGroupKey `json:"resourceGroupKeys"`
}

// InviteBRequest — вторая фаза: те же ключи групп, перезавернутые под
// публичный ключ приглашаемого. Открытые ключи групп сервер не видит.
type InviteBRequest struct {
	AccountID         string             `json:"accountId"`
	ResourceGroupKeys []ResourceGroupKey `json:"resourceGroupKeys"`
}

func (r InviteBRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccountID, validation.Required),
		validation.Field(&r.ResourceGroupKeys, validation.Required),
	)
}
