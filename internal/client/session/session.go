// Package session реализует вход по протоколу с нулевым разглашением и
// локальное хранение учетных данных сессии. Пароль пользователя никогда не
// покидает клиента: сервер видит только SRP-сообщения и шифротексты.
package session

import (
	"errors"

	"github.com/restkeep/restkeep/internal/crypto"
)

var (
	// ErrAuthentication возвращается при любом провале входа: неверный пароль,
	// несошедшееся доказательство или невозможность расшифровать ключи после
	// успешного рукопожатия. Причины намеренно неразличимы.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrNoSession возвращается, когда активной сессии нет.
	ErrNoSession = errors.New("no active session")
)

// Session — расшифрованные учетные данные установленной сессии.
type Session struct {
	ID           string             `json:"id"` // hex сессионного ключа K
	AccountID    string             `json:"accountId"`
	Email        string             `json:"email"`
	FirstName    string             `json:"firstName"`
	LastName     string             `json:"lastName"`
	SymmetricKey []byte             `json:"symmetricKey"`
	PublicKey    *crypto.PublicKey  `json:"publicKey"`
	PrivateKey   *crypto.PrivateKey `json:"privateKey"`
}

// loginState отслеживает фазу рукопожатия в рамках одной попытки входа.
type loginState int

const (
	stateIdle loginState = iota
	stateSaltsRequested
	stateChallengeSent
	stateVerifyingServer
	stateEstablished
	stateFailed
)

func (s loginState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateSaltsRequested:
		return "salts_requested"
	case stateChallengeSent:
		return "challenge_sent"
	case stateVerifyingServer:
		return "verifying_server"
	case stateEstablished:
		return "established"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
