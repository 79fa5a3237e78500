package storage

import (
	"context"
	"time"
)

// Account — серверная запись аккаунта. Сервер хранит только verifier и
// шифротексты ключей; ни пароля, ни открытых ключевых материалов здесь нет.
type Account struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	Verifier        string // hex
	PublicKey       string // JSON
	EncPrivateKey   string // envelope JSON
	EncSymmetricKey string // envelope JSON
	SaltKey         string
	SaltAuth        string
	SaltEnc         string
	CreatedAt       time.Time
}

// AccountStorage defines interface for account persistence
type AccountStorage interface {
	// CreateAccount creates a new account
	// Returns ErrAccountExists if the email is already taken
	CreateAccount(ctx context.Context, account *Account) error

	// GetAccountByEmail retrieves an account by normalized email
	// Returns ErrAccountNotFound if it doesn't exist
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// GetAccountByID retrieves an account by id
	// Returns ErrAccountNotFound if it doesn't exist
	GetAccountByID(ctx context.Context, id string) (*Account, error)
}
