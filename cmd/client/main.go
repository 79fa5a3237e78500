package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/restkeep/restkeep/internal/client/api"
	"github.com/restkeep/restkeep/internal/client/cli"
	"github.com/restkeep/restkeep/internal/client/iocli"
	"github.com/restkeep/restkeep/internal/client/session"
	"github.com/restkeep/restkeep/internal/client/store"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "restkeep-client.db", "Path to local database")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	logLevel := slog.LevelWarn
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := store.Open(ctx, *dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := docs.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	sessionStore, err := session.NewStore(docs.DB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}

	clientID := "cli_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	apiClient := api.NewClient(*serverURL, clientID, logger)
	manager := session.NewManager(apiClient, sessionStore, logger)

	app := cli.New(stdio, apiClient, manager, docs, logger)

	command := args[0]
	var runErr error
	switch command {
	case "signup":
		runErr = app.RunSignup(ctx)
	case "login":
		runErr = app.RunLogin(ctx)
	case "logout":
		runErr = app.RunLogout(ctx)
	case "status":
		runErr = app.RunStatus(ctx)
	case "add":
		runErr = app.RunAdd(ctx, args[1:])
	case "list":
		runErr = app.RunList(ctx)
	case "delete":
		runErr = app.RunDelete(ctx, args[1:])
	case "sync":
		runErr = app.RunSync(ctx)
	case "daemon":
		runErr = app.RunDaemon(ctx)
	case "teams":
		runErr = app.RunTeams(ctx)
	case "invite":
		runErr = app.RunInvite(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("Restkeep Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
