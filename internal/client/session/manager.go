package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/restkeep/restkeep/internal/client/api"
	"github.com/restkeep/restkeep/internal/crypto"
	"github.com/restkeep/restkeep/internal/srp"
	pkgapi "github.com/restkeep/restkeep/pkg/api"
)

// Manager выполняет регистрацию и вход, хранит результат в Store и
// прописывает идентификатор сессии в API клиент.
type Manager struct {
	client *api.Client
	store  *Store
	logger *slog.Logger
	group  *srp.Group
}

// NewManager создает менеджер сессий.
func NewManager(client *api.Client, store *Store, logger *slog.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		logger: logger,
		group:  srp.RFC5054Group2048,
	}
}

// Signup регистрирует новый аккаунт. Вся криптография происходит локально:
// на сервер уходят только соли, verifier и шифротексты.
func (m *Manager) Signup(ctx context.Context, firstName, lastName, email, passphrase string) error {
	email = NormalizeEmail(email)
	passphrase = NormalizePassphrase(passphrase)

	// 1. Три независимые соли: для authSecret, для verifier и для ключа шифрования
	saltKey, err := crypto.RandomSaltHex()
	if err != nil {
		return fmt.Errorf("failed to generate saltKey: %w", err)
	}
	saltAuth, err := crypto.RandomSaltHex()
	if err != nil {
		return fmt.Errorf("failed to generate saltAuth: %w", err)
	}
	saltEnc, err := crypto.RandomSaltHex()
	if err != nil {
		return fmt.Errorf("failed to generate saltEnc: %w", err)
	}

	accountSuffix, err := crypto.RandomHex(16)
	if err != nil {
		return fmt.Errorf("failed to generate account id: %w", err)
	}
	accountID := "act_" + accountSuffix

	// 2. SRP verifier из authSecret
	authSecret, err := crypto.DeriveKey(passphrase, email, saltKey)
	if err != nil {
		return fmt.Errorf("failed to derive auth secret: %w", err)
	}
	verifier := srp.ComputeVerifier(m.group, []byte(saltAuth), []byte(email), authSecret)

	// 3. Ключевая пара аккаунта и симметричный ключ
	publicKey, privateKey, err := crypto.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate keypair: %w", err)
	}
	symmetricKey, err := crypto.GenerateSymmetricKey()
	if err != nil {
		return fmt.Errorf("failed to generate symmetric key: %w", err)
	}

	// 4. Приватный ключ — под симметричным ключом
	privateJSON, err := json.Marshal(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}
	encPrivateKey, err := crypto.EncryptToString(symmetricKey, privateJSON, nil)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}

	// 5. Симметричный ключ — под ключом из парольной фразы
	derivedKey, err := crypto.DeriveKey(passphrase, email, saltEnc)
	if err != nil {
		return fmt.Errorf("failed to derive encryption key: %w", err)
	}
	encSymmetricKey, err := crypto.EncryptToString(derivedKey, symmetricKey, nil)
	if err != nil {
		return fmt.Errorf("failed to encrypt symmetric key: %w", err)
	}

	publicJSON, err := json.Marshal(publicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}

	account := pkgapi.Account{
		ID:              accountID,
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		Verifier:        hex.EncodeToString(verifier),
		PublicKey:       string(publicJSON),
		EncPrivateKey:   encPrivateKey,
		EncSymmetricKey: encSymmetricKey,
		SaltKey:         saltKey,
		SaltAuth:        saltAuth,
		SaltEnc:         saltEnc,
	}

	if err := m.client.Signup(ctx, account); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	m.logger.Info("account registered", "email", email)
	return nil
}

// Login выполняет рукопожатие с нулевым разглашением и двухступенчатую
// распаковку ключей. Любой провал — от несошедшегося доказательства до
// нерасшифровавшегося ключа — возвращается как ErrAuthentication.
func (m *Manager) Login(ctx context.Context, email, passphrase string) (*Session, error) {
	email = NormalizeEmail(email)
	passphrase = NormalizePassphrase(passphrase)

	state := stateIdle
	fail := func(step string, err error) (*Session, error) {
		m.setState(&state, stateFailed)
		m.logger.Debug("login failed", "step", step, "error", err)
		return nil, fmt.Errorf("%s: %w", step, ErrAuthentication)
	}

	// 1. Соли аккаунта
	salts, err := m.client.LoginS(ctx, email)
	if err != nil {
		return fail("login-s", err)
	}
	m.setState(&state, stateSaltsRequested)

	// 2. Эфемерный обмен A/B
	authSecret, err := crypto.DeriveKey(passphrase, email, salts.SaltKey)
	if err != nil {
		return fail("derive auth secret", err)
	}
	clientSecret, err := srp.GenerateSecret()
	if err != nil {
		return fail("generate client secret", err)
	}
	client := srp.NewClient(m.group, []byte(salts.SaltAuth), []byte(email), authSecret, clientSecret)

	aResp, err := m.client.LoginA(ctx, pkgapi.LoginARequest{
		SrpA:  hex.EncodeToString(client.A()),
		Email: email,
	})
	if err != nil {
		return fail("login-a", err)
	}
	m.setState(&state, stateChallengeSent)

	srpB, err := hex.DecodeString(aResp.SrpB)
	if err != nil {
		return fail("decode srpB", err)
	}
	if err := client.SetB(srpB); err != nil {
		return fail("set srpB", err)
	}

	// 3. Обмен доказательствами
	m1, err := client.M1()
	if err != nil {
		return fail("compute M1", err)
	}
	m1Resp, err := m.client.LoginM1(ctx, pkgapi.LoginM1Request{
		SrpM1:            hex.EncodeToString(m1),
		SessionStarterID: aResp.SessionStarterID,
	})
	if err != nil {
		return fail("login-m1", err)
	}
	m.setState(&state, stateVerifyingServer)

	srpM2, err := hex.DecodeString(m1Resp.SrpM2)
	if err != nil {
		return fail("decode srpM2", err)
	}
	if err := client.CheckM2(srpM2); err != nil {
		return fail("verify server proof", err)
	}

	// 4. Общий секрет K становится идентификатором сессии
	sessionKey, err := client.K()
	if err != nil {
		return fail("session key", err)
	}
	sessionID := hex.EncodeToString(sessionKey)
	m.client.SetSessionID(sessionID)

	// 5. Метаданные аккаунта и двухступенчатая распаковка ключей. Провал
	// расшифровки после успешного доказательства всё равно трактуется как
	// неверные учетные данные.
	sess, err := m.unwrapAccount(ctx, sessionID, email, passphrase)
	if err != nil {
		m.client.SetSessionID("")
		return fail("unwrap account keys", err)
	}

	// 6. Сначала блоб, потом указатель
	if err := m.store.Put(ctx, sess); err != nil {
		m.client.SetSessionID("")
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	if err := m.store.SetCurrent(ctx, sess.ID); err != nil {
		m.client.SetSessionID("")
		return nil, fmt.Errorf("failed to activate session: %w", err)
	}

	m.setState(&state, stateEstablished)
	m.logger.Info("session established", "email", email, "accountId", sess.AccountID)
	return sess, nil
}

// unwrapAccount забирает метаданные аккаунта и расшифровывает цепочку ключей:
// derivedKey -> symmetricKey -> privateKey.
func (m *Manager) unwrapAccount(ctx context.Context, sessionID, email, passphrase string) (*Session, error) {
	whoami, err := m.client.WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("whoami failed: %w", err)
	}

	derivedKey, err := crypto.DeriveKey(passphrase, email, whoami.SaltEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	symmetricKey, err := crypto.DecryptFromString(derivedKey, whoami.EncSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap symmetric key: %w", err)
	}

	privateJSON, err := crypto.DecryptFromString(symmetricKey, whoami.EncPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap private key: %w", err)
	}
	var privateKey crypto.PrivateKey
	if err := json.Unmarshal(privateJSON, &privateKey); err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	var publicKey crypto.PublicKey
	if err := json.Unmarshal([]byte(whoami.PublicKey), &publicKey); err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &Session{
		ID:           sessionID,
		AccountID:    whoami.AccountID,
		Email:        whoami.Email,
		FirstName:    whoami.FirstName,
		LastName:     whoami.LastName,
		SymmetricKey: symmetricKey,
		PublicKey:    &publicKey,
		PrivateKey:   &privateKey,
	}, nil
}

// Logout уведомляет сервер (best effort) и удаляет локальную сессию.
func (m *Manager) Logout(ctx context.Context) error {
	id, err := m.store.CurrentID(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}

	if err := m.client.Logout(ctx); err != nil {
		// Недоступный сервер не должен мешать локальному выходу
		m.logger.Warn("failed to logout on server", "error", err)
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := m.store.ClearCurrent(ctx); err != nil {
		return fmt.Errorf("failed to clear current session: %w", err)
	}
	m.client.SetSessionID("")
	return nil
}

// Resume поднимает активную сессию из хранилища и прописывает её в API клиент.
func (m *Manager) Resume(ctx context.Context) (*Session, error) {
	sess, err := m.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	m.client.SetSessionID(sess.ID)
	return sess, nil
}

func (m *Manager) setState(state *loginState, next loginState) {
	m.logger.Debug("login state", "from", state.String(), "to", next.String())
	*state = next
}
