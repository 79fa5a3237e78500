// Package sync держит локальное хранилище документов и сервер в согласованном
// состоянии: реактивно проталкивает локальные изменения и периодически
// выравнивает полные состояния по отпечаткам. Содержимое документов уходит на
// сервер только в зашифрованном виде.
package sync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/restkeep/restkeep/internal/client/session"
	"github.com/restkeep/restkeep/internal/client/store"
	"github.com/restkeep/restkeep/internal/models"
	"github.com/restkeep/restkeep/pkg/api"
)

//go:generate moq -out transport_mock.go . Transport

// Transport — серверная сторона протокола синхронизации, как её видит клиент.
type Transport interface {
	Sync(ctx context.Context, fingerprints api.SyncRequest) (*api.SyncResponse, error)
	PutResource(ctx context.Context, resourcePath string, doc api.ResourceDoc) (*api.ResourceDoc, error)
	DeleteResource(ctx context.Context, resourcePath, id string) error
	CreateResourceGroup(ctx context.Context, req api.CreateResourceGroupRequest) error
	GetResourceGroup(ctx context.Context, id string) (*api.ResourceGroupResponse, error)
}

const (
	// listenerKey — ключ подписки сервиса на шину изменений хранилища.
	listenerKey = "sync"

	defaultInterval   = 10 * time.Second
	defaultStartDelay = 2 * time.Second
)

// Service — клиент синхронизации. Один экземпляр на сессию.
type Service struct {
	transport Transport
	store     *store.Store
	logger    *slog.Logger
	keys      *keyring

	interval   time.Duration
	startDelay time.Duration

	// Циклы полной синхронизации сериализованы: новый не начинается,
	// пока не закончился предыдущий.
	inFlight atomic.Bool

	// pushWG учитывает отсоединенные реактивные пуши.
	pushWG sync.WaitGroup

	cancel context.CancelFunc
}

// NewService создает сервис синхронизации для установленной сессии.
func NewService(transport Transport, st *store.Store, sess *session.Session, logger *slog.Logger) *Service {
	return &Service{
		transport:  transport,
		store:      st,
		logger:     logger,
		keys:       newKeyring(transport, sess),
		interval:   defaultInterval,
		startDelay: defaultStartDelay,
	}
}

// Start подписывается на шину изменений и запускает периодический цикл.
// Повторный Start без Stop не поддерживается.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.store.Subscribe(listenerKey, func(e store.ChangeEvent) {
		s.handleChange(ctx, e)
	})

	go s.run(ctx)
	s.logger.Info("sync service started", "interval", s.interval)
}

// Stop отписывается от шины и останавливает цикл. Уже запущенные пуши
// дорабатывают до конца.
func (s *Service) Stop() {
	s.store.Unsubscribe(listenerKey)
	if s.cancel != nil {
		s.cancel()
	}
	s.pushWG.Wait()
}

func (s *Service) run(ctx context.Context) {
	// Первая полная синхронизация — вскоре после старта
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.startDelay):
	}
	s.syncAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncAndLog(ctx)
		}
	}
}

func (s *Service) syncAndLog(ctx context.Context) {
	if err := s.SyncNow(ctx); err != nil {
		s.logger.Error("full sync failed", "error", err)
	}
}

// SyncNow выполняет один цикл полной синхронизации. Если предыдущий цикл еще
// идет, новый не начинается.
func (s *Service) SyncNow(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("sync cycle already in flight, skipping")
		return nil
	}
	defer s.inFlight.Store(false)

	return s.reconcile(ctx)
}

// syncEligible сообщает, участвует ли документ в синхронизации.
func syncEligible(doc *models.Document) bool {
	return doc != nil && doc.SyncEligible()
}
