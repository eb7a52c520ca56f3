package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-portal/internal/api/http"
	"github.com/spec-kit/ticket-portal/internal/api/http/handlers"
	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/observability"
	"github.com/spec-kit/ticket-portal/internal/persistence"
	"github.com/spec-kit/ticket-portal/internal/repository"
	"github.com/spec-kit/ticket-portal/internal/service"
	"github.com/spec-kit/ticket-portal/internal/session"
	"github.com/spec-kit/ticket-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifier := worker.StartNotificationWorker(ctx, dispatcher, notifications, logger)
	defer notifier.Stop()

	sessions := session.NewRedisStore(redis.Client, session.NewSealer(cfg.Auth.SealKey))
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	upstream := gateway.NewClient(cfg.Upstream)

	ticketDeps := service.TicketDependencies{
		Gateway:    upstream,
		Guard:      session.NewRedisGuard(redis.Client, cfg.Auth.InflightTTL()),
		AuditRepo:  repository.NewSubmissionAuditRepository(pg.Pool),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	}
	authService := service.NewAuthService(service.AuthDependencies{
		Gateway:    upstream,
		Sessions:   sessions,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
		SessionTTL: cfg.Auth.SessionTTL(),
	})
	ticketService := service.NewTicketService(ticketDeps)
	adminService := service.NewAdminService(ticketDeps)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Admin:          handlers.NewAdminTicketsHandler(adminService, authService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
