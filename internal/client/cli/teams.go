package cli

import (
	"context"
	"fmt"

	"github.com/restkeep/restkeep/internal/client/teams"
)

func (c *Cli) RunTeams(ctx context.Context) error {
	sess, err := c.resume(ctx)
	if err != nil {
		return err
	}

	svc := teams.NewService(c.client, sess, c.logger)
	list, err := svc.ListTeams(ctx)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		c.io.Println("No teams")
		return nil
	}

	for _, team := range list {
		c.io.Printf("%s  %s\n", team.ID, team.Name)
	}
	return nil
}

func (c *Cli) RunInvite(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: invite <team-id> <email>")
	}

	sess, err := c.resume(ctx)
	if err != nil {
		return err
	}

	svc := teams.NewService(c.client, sess, c.logger)
	if err := svc.Invite(ctx, args[0], args[1]); err != nil {
		return err
	}

	c.io.Printf("✓ Invited %s to %s\n", args[1], args[0])
	return nil
}
