package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/cli"
	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/observability"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.Describe(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Command output owns stdout.
	if os.Getenv("LOG_FORMAT") == "" {
		cfg.Logger.Format = "console"
	}
	if os.Getenv("LOG_OUTPUT") == "" {
		cfg.Logger.Output = "stderr"
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := session.OpenSQLiteStore(cfg.CLI.SessionDBPath, session.NewSealer(cfg.Auth.SealKey))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	upstream := gateway.NewClient(cfg.Upstream)
	profile := cfg.CLI.Profile
	deps := service.TicketDependencies{
		Gateway: upstream,
		Guard:   session.NewMemoryGuard(),
		Logger:  logger,
	}
	app := &cli.App{
		Auth: service.NewAuthService(service.AuthDependencies{
			Gateway:    upstream,
			Sessions:   store,
			Logger:     logger,
			SessionTTL: cfg.Auth.SessionTTL(),
			SessionID:  func() string { return profile },
		}),
		Tickets: service.NewTicketService(deps),
		Admin:   service.NewAdminService(deps),
		Profile: profile,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug("ticketctl starting", zap.String("profile", profile), zap.String("api", cfg.Upstream.BaseURL))
	return cli.NewRootCommand(app).ExecuteContext(ctx)
}
