// Package server собирает HTTP сервер синхронизации: маршруты, middleware
// и graceful shutdown поверх sqlite хранилища.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/restkeep/restkeep/internal/server/handlers"
	"github.com/restkeep/restkeep/internal/server/middleware"
	"github.com/restkeep/restkeep/internal/server/storage/sqlite"
)

// Config конфигурация HTTP сервера
type Config struct {
	Addr    string
	Version string
}

// Server инкапсулирует http.Server и хранилище
type Server struct {
	logger *slog.Logger
	http   *http.Server
}

// collections — серверные пути коллекций документов. Каждый тип документа
// живет в своей коллекции, но обслуживается одним обработчиком.
var collections = []string{
	"workspaces",
	"request-groups",
	"requests",
	"environments",
	"cookie-jars",
}

// New создает сервер с полным набором маршрутов
func New(cfg Config, logger *slog.Logger, store *sqlite.Storage) *Server {
	authHandler := handlers.NewAuthHandler(logger, store, store, store)
	syncHandler := handlers.NewSyncHandler(logger, store, store)
	groupHandler := handlers.NewGroupHandler(logger, store)
	teamHandler := handlers.NewTeamHandler(logger, store, store, store)
	healthHandler := handlers.NewHealthHandler(logger, cfg.Version)

	authRequired := middleware.AuthMiddleware(logger, store)

	mux := http.NewServeMux()

	// Открытые маршруты: регистрация и три шага SRP входа
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /auth/login-s", authHandler.LoginS)
	mux.HandleFunc("POST /auth/login-a", authHandler.LoginA)
	mux.HandleFunc("POST /auth/login-m1", authHandler.LoginM1)

	// Все остальное требует установленной сессии
	mux.Handle("GET /auth/whoami", authRequired(http.HandlerFunc(authHandler.WhoAmI)))
	mux.Handle("POST /auth/logout", authRequired(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("POST /sync", authRequired(http.HandlerFunc(syncHandler.Sync)))
	for _, collection := range collections {
		mux.Handle(fmt.Sprintf("PUT /%s/{id}", collection), authRequired(http.HandlerFunc(syncHandler.Upsert)))
		mux.Handle(fmt.Sprintf("DELETE /%s/{id}", collection), authRequired(http.HandlerFunc(syncHandler.Delete)))
	}

	mux.Handle("POST /api/resource_groups", authRequired(http.HandlerFunc(groupHandler.Create)))
	mux.Handle("GET /api/resource_groups/{id}", authRequired(http.HandlerFunc(groupHandler.Get)))

	mux.Handle("GET /api/teams", authRequired(http.HandlerFunc(teamHandler.List)))
	mux.Handle("POST /api/teams/{id}/invite-a", authRequired(http.HandlerFunc(teamHandler.InviteA)))
	mux.Handle("POST /api/teams/{id}/invite-b", authRequired(http.HandlerFunc(teamHandler.InviteB)))

	// Middleware chain: логирование снаружи, recovery внутри
	var handler http.Handler = mux
	handler = middleware.RecoveryMiddleware(logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/health"})(handler)

	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run запускает сервер и блокируется до его остановки
func (s *Server) Run() error {
	s.logger.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.http.Shutdown(ctx)
}

// Handler возвращает корневой http.Handler (используется в тестах)
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
