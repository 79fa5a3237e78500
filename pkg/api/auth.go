package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Account представляет тело запроса на регистрацию: сервер получает только
// соли, verifier и шифротексты — ни пароля, ни ключей в открытом виде.
type Account struct {
	ID              string `json:"id"`              // act_<hex> идентификатор аккаунта
	Email           string `json:"email"`           // нормализованный email (lower+trim)
	FirstName       string `json:"firstName"`       // имя
	LastName        string `json:"lastName"`        // фамилия
	Verifier        string `json:"verifier"`        // SRP verifier (hex)
	PublicKey       string `json:"publicKey"`       // публичный RSA ключ (JSON)
	EncPrivateKey   string `json:"encPrivateKey"`   // приватный ключ, зашифрованный симметричным ключом (envelope JSON)
	EncSymmetricKey string `json:"encSymmetricKey"` // симметричный ключ, зашифрованный ключом из пароля (envelope JSON)
	SaltKey         string `json:"saltKey"`         // соль для authSecret (hex, 32 байта)
	SaltAuth        string `json:"saltAuth"`        // соль для SRP verifier (hex, 32 байта)
	SaltEnc         string `json:"saltEnc"`         // соль для ключа шифрования (hex, 32 байта)
}

func (a Account) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Email, validation.Required, is.EmailFormat),
		validation.Field(&a.Verifier, validation.Required, is.Hexadecimal),
		validation.Field(&a.PublicKey, validation.Required),
		validation.Field(&a.EncPrivateKey, validation.Required),
		validation.Field(&a.EncSymmetricKey, validation.Required),
		validation.Field(&a.SaltKey, validation.Required, is.Hexadecimal),
		validation.Field(&a.SaltAuth, validation.Required, is.Hexadecimal),
		validation.Field(&a.SaltEnc, validation.Required, is.Hexadecimal),
	)
}

// LoginSRequest — шаг 1 входа: клиент присылает email, получает соли.
type LoginSRequest struct {
	Email string `json:"email"`
}

func (r LoginSRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
	)
}

// LoginSResponse возвращает публичные соли аккаунта.
type LoginSResponse struct {
	SaltKey  string `json:"saltKey"`
	SaltAuth string `json:"saltAuth"`
}

// LoginARequest — шаг 2: клиент присылает эфемерное значение A.
type LoginARequest struct {
	SrpA  string `json:"srpA"` // hex
	Email string `json:"email"`
}

func (r LoginARequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SrpA, validation.Required, is.Hexadecimal),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
	)
}

// LoginAResponse возвращает серверное B и идентификатор рукопожатия.
type LoginAResponse struct {
	SessionStarterID string `json:"sessionStarterId"`
	SrpB             string `json:"srpB"` // hex
}

// LoginM1Request — шаг 3: клиентское доказательство M1.
type LoginM1Request struct {
	SrpM1            string `json:"srpM1"` // hex
	SessionStarterID string `json:"sessionStarterId"`
}

func (r LoginM1Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SrpM1, validation.Required, is.Hexadecimal),
		validation.Field(&r.SessionStarterID, validation.Required),
	)
}

// LoginM1Response возвращает серверное доказательство M2.
type LoginM1Response struct {
	SrpM2 string `json:"srpM2"` // hex
}

// WhoAmIResponse — метаданные аккаунта для аутентифицированной сессии.
// Приватный и симметричный ключи отдаются только в зашифрованном виде.
type WhoAmIResponse struct {
	AccountID       string `json:"accountId"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PublicKey       string `json:"publicKey"`
	EncPrivateKey   string `json:"encPrivateKey"`
	EncSymmetricKey string `json:"encSymmetricKey"`
	SaltEnc         string `json:"saltEnc"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
