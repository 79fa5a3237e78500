package session

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/restkeep/restkeep/internal/crypto"
)

const (
	bucketSessions = "sessions"

	// Ключ-указатель на активную сессию. Пишется строго после блоба самой
	// сессии: наполовину записанный вход не должен оставлять указатель на
	// несуществующий блоб.
	keyCurrentSession = "currentSessionId"

	blobKeyPrefix = "session__"
	blobKeyIDLen  = 10
)

// Store хранит сессии в bbolt. Каждая сессия лежит отдельным блобом,
// зашифрованным ключом, выведенным из её собственного идентификатора;
// новый вход переписывает указатель, но не трогает чужие блобы.
type Store struct {
	db *bolt.DB
}

// NewStore создает хранилище сессий поверх открытой базы.
func NewStore(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSessions))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Put шифрует и сохраняет сессию. Указатель активной сессии не меняется.
func (s *Store) Put(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}

	plaintext, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key, err := blobCipherKey(sess.ID)
	if err != nil {
		return err
	}
	blob, err := crypto.EncryptToString(key, plaintext, nil)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Put(blobKey(sess.ID), []byte(blob))
	})
}

// Get загружает и расшифровывает сессию по идентификатору.
func (s *Store) Get(_ context.Context, sessionID string) (*Session, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSessions)).Get(blobKey(sessionID))
		if v == nil {
			return ErrNoSession
		}
		blob = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	key, err := blobCipherKey(sessionID)
	if err != nil {
		return nil, err
	}
	plaintext, err := crypto.DecryptFromString(key, string(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(plaintext, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete удаляет блоб сессии. Указатель, если он на неё смотрел, остается
// висячим до ClearCurrent — Current в этом случае вернет ErrNoSession.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Delete(blobKey(sessionID))
	})
}

// SetCurrent делает сессию активной. Вызывается после Put.
func (s *Store) SetCurrent(_ context.Context, sessionID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Put([]byte(keyCurrentSession), []byte(sessionID))
	})
}

// ClearCurrent сбрасывает указатель активной сессии.
func (s *Store) ClearCurrent(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Delete([]byte(keyCurrentSession))
	})
}

// CurrentID возвращает идентификатор активной сессии.
func (s *Store) CurrentID(_ context.Context) (string, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSessions)).Get([]byte(keyCurrentSession))
		if v == nil {
			return ErrNoSession
		}
		id = string(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Current возвращает активную сессию целиком.
func (s *Store) Current(ctx context.Context) (*Session, error) {
	id, err := s.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func blobKey(sessionID string) []byte {
	short := sessionID
	if len(short) > blobKeyIDLen {
		short = short[:blobKeyIDLen]
	}
	return []byte(blobKeyPrefix + short)
}

// blobCipherKey выводит ключ шифрования блоба из идентификатора сессии.
func blobCipherKey(sessionID string) ([]byte, error) {
	key, err := crypto.DeriveKey(sessionID, "session-store", string(blobKey(sessionID)))
	if err != nil {
		return nil, fmt.Errorf("failed to derive session blob key: %w", err)
	}
	return key, nil
}
