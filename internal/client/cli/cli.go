// Package cli содержит команды клиентского приложения. Ввод-вывод идет
// через iocli.IO, поэтому команды тестируются без терминала.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/restkeep/restkeep/internal/client/api"
	"github.com/restkeep/restkeep/internal/client/iocli"
	"github.com/restkeep/restkeep/internal/client/session"
	"github.com/restkeep/restkeep/internal/client/store"
	"github.com/restkeep/restkeep/internal/models"
)

type Cli struct {
	io      iocli.IO
	client  *api.Client
	manager *session.Manager
	docs    *store.Store
	logger  *slog.Logger
}

func New(io iocli.IO, client *api.Client, manager *session.Manager, docs *store.Store, logger *slog.Logger) *Cli {
	return &Cli{
		io:      io,
		client:  client,
		manager: manager,
		docs:    docs,
		logger:  logger,
	}
}

// resume поднимает активную сессию или объясняет пользователю, что делать
func (c *Cli) resume(ctx context.Context) (*session.Session, error) {
	sess, err := c.manager.Resume(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, fmt.Errorf("not logged in, run 'restkeep login' first")
		}
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}
	return sess, nil
}

// findDoc ищет документ по id среди всех типов
func (c *Cli) findDoc(ctx context.Context, id string) (*models.Document, error) {
	for _, docType := range models.AllTypes() {
		doc, err := c.docs.Get(ctx, docType, id)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("document %q not found", id)
}

func PrintUsage(io iocli.IO) {
	io.Println("Restkeep Client")
	io.Println("")
	io.Println("Usage:")
	io.Println("  restkeep [OPTIONS] COMMAND")
	io.Println("")
	io.Println("Options:")
	io.Println("  --version      Show version information")
	io.Println("  --server URL   Server URL (default: http://localhost:8080)")
	io.Println("  --db PATH      Path to local database (default: restkeep-client.db)")
	io.Println("  --debug        Enable debug logging")
	io.Println("")
	io.Println("Commands:")
	io.Println("  signup                      Create a new account")
	io.Println("  login                       Login to server")
	io.Println("  logout                      Logout and forget local session")
	io.Println("  status                      Show session status")
	io.Println("  add <type> <name> [parent]  Add a document (workspace, folder, request, environment, jar)")
	io.Println("  list                        Show the workspace tree")
	io.Println("  delete <id>                 Delete a document with its descendants")
	io.Println("  sync                        Run one synchronization cycle")
	io.Println("  daemon                      Keep syncing until interrupted")
	io.Println("  teams                       List teams")
	io.Println("  invite <team-id> <email>    Invite an account to a team")
	io.Println("")
	io.Println("Examples:")
	io.Println("  restkeep signup")
	io.Println("  restkeep add workspace 'My API'")
	io.Println("  restkeep add request 'Get users' wrk_0a1b2c")
	io.Println("  restkeep --server https://example.com sync")
}
