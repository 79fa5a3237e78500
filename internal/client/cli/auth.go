package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/restkeep/restkeep/internal/client/session"
)

func (c *Cli) RunSignup(ctx context.Context) error {
	c.io.Println("=== Signup ===")
	c.io.Println("")

	firstName, err := c.io.ReadInput("First name: ")
	if err != nil {
		return fmt.Errorf("failed to read first name: %w", err)
	}
	lastName, err := c.io.ReadInput("Last name: ")
	if err != nil {
		return fmt.Errorf("failed to read last name: %w", err)
	}
	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	passphrase, err := c.io.ReadPassword("Passphrase: ")
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	confirm, err := c.io.ReadPassword("Repeat passphrase: ")
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if passphrase != confirm {
		return errors.New("passphrases do not match")
	}
	if passphrase == "" {
		return errors.New("passphrase cannot be empty")
	}

	c.io.Println("")
	c.io.Println("Creating account...")

	if err := c.manager.Signup(ctx, firstName, lastName, email, passphrase); err != nil {
		return err
	}

	c.io.Println("")
	c.io.Println("✓ Account created!")
	c.io.Println("The passphrase never leaves this machine. If you lose it,")
	c.io.Println("nobody can recover your data.")
	return nil
}

func (c *Cli) RunLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println("")

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	passphrase, err := c.io.ReadPassword("Passphrase: ")
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}

	c.io.Println("")
	c.io.Println("Authenticating...")

	sess, err := c.manager.Login(ctx, email, passphrase)
	if err != nil {
		return err
	}

	c.io.Println("")
	c.io.Println("✓ Login successful!")
	c.io.Printf("Logged in as %s (%s)\n", sess.Email, sess.AccountID)
	return nil
}

func (c *Cli) RunLogout(ctx context.Context) error {
	if err := c.manager.Logout(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Logged out")
	return nil
}

func (c *Cli) RunStatus(ctx context.Context) error {
	sess, err := c.manager.Resume(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.io.Println("Not logged in")
			return nil
		}
		return err
	}

	c.io.Println("Logged in")
	c.io.Printf("  Account: %s\n", sess.AccountID)
	c.io.Printf("  Email:   %s\n", sess.Email)
	c.io.Printf("  Name:    %s %s\n", sess.FirstName, sess.LastName)
	return nil
}
