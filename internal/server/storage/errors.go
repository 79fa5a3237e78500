package storage

import "errors"

// Ошибки слоя хранения. Обработчики переводят их в HTTP статусы.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrHandshakeNotFound = errors.New("handshake not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrGroupNotFound     = errors.New("resource group not found")
	ErrGroupExists       = errors.New("resource group already exists")
	ErrTeamNotFound      = errors.New("team not found")
	ErrNotMember         = errors.New("account is not a member")
)
