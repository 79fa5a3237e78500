package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/restkeep/restkeep/internal/server/storage"
)

// CreateAccount creates a new account
func (s *Storage) CreateAccount(ctx context.Context, account *storage.Account) error {
	query := `
		INSERT INTO accounts (id, email, first_name, last_name, verifier,
			public_key, enc_private_key, enc_symmetric_key,
			salt_key, salt_auth, salt_enc, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.Verifier,
		account.PublicKey,
		account.EncPrivateKey,
		account.EncSymmetricKey,
		account.SaltKey,
		account.SaltAuth,
		account.SaltEnc,
		account.CreatedAt,
	)
	if err != nil {
		// Дубликат email или id
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrAccountExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetAccountByEmail retrieves an account by normalized email
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*storage.Account, error) {
	return s.getAccount(ctx, "email", email)
}

// GetAccountByID retrieves an account by id
func (s *Storage) GetAccountByID(ctx context.Context, id string) (*storage.Account, error) {
	return s.getAccount(ctx, "id", id)
}

func (s *Storage) getAccount(ctx context.Context, column, value string) (*storage.Account, error) {
	query := fmt.Sprintf(`
		SELECT id, email, first_name, last_name, verifier,
			public_key, enc_private_key, enc_symmetric_key,
			salt_key, salt_auth, salt_enc, created_at
		FROM accounts
		WHERE %s = ?
	`, column)

	account := &storage.Account{}
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.Verifier,
		&account.PublicKey,
		&account.EncPrivateKey,
		&account.EncSymmetricKey,
		&account.SaltKey,
		&account.SaltAuth,
		&account.SaltEnc,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
