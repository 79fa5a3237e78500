package cli

import (
	"context"

	syncsvc "github.com/restkeep/restkeep/internal/client/sync"
)

func (c *Cli) RunSync(ctx context.Context) error {
	sess, err := c.resume(ctx)
	if err != nil {
		return err
	}

	c.io.Println("Synchronizing...")

	svc := syncsvc.NewService(c.client, c.docs, sess, c.logger)
	if err := svc.SyncNow(ctx); err != nil {
		return err
	}

	c.io.Println("✓ Sync complete")
	return nil
}

// RunDaemon запускает фоновую синхронизацию: реактивные push-и на каждое
// локальное изменение плюс периодические полные циклы. Блокируется до
// отмены контекста
func (c *Cli) RunDaemon(ctx context.Context) error {
	sess, err := c.resume(ctx)
	if err != nil {
		return err
	}

	svc := syncsvc.NewService(c.client, c.docs, sess, c.logger)

	// Сервер может попросить немедленный цикл через command-заголовок
	c.client.OnCommand(func(command string, args map[string]string) {
		if command == "trigger/sync" {
			c.logger.Info("server requested sync", "reason", args["reason"])
			if err := svc.SyncNow(ctx); err != nil {
				c.logger.Error("triggered sync failed", "error", err)
			}
		}
	})

	svc.Start(ctx)
	defer svc.Stop()

	c.io.Println("Syncing in background. Press Ctrl+C to stop.")
	<-ctx.Done()
	c.io.Println("")
	c.io.Println("Stopping...")
	return nil
}
