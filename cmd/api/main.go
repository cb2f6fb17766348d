// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

// Command api is the entry point for the Compatdex HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compatdex/compatdex/internal/api"
	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/ban"
	"github.com/compatdex/compatdex/internal/content/listing"
	"github.com/compatdex/compatdex/internal/moderation"
	"github.com/compatdex/compatdex/internal/notify"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/config"
	"github.com/compatdex/compatdex/internal/platform/constants"
	"github.com/compatdex/compatdex/internal/platform/middleware"
	"github.com/compatdex/compatdex/internal/platform/migration"
	pgstore "github.com/compatdex/compatdex/internal/platform/postgres"
	redisstore "github.com/compatdex/compatdex/internal/platform/redis"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/trust"
	"github.com/compatdex/compatdex/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "compatdex"))
	slog.SetDefault(log)

	log.Info("[Compatdex] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "compatdex"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	// Ambient collaborators shared across the engine.
	dispatcher := notify.NewDispatcher(rdb, log)
	permService := perm.NewService(perm.NewPostgresGrantRepository(pool), log)
	trustService := trust.NewService(trust.NewPostgresRepository(pool), trust.NewRedisScoreCache(rdb), log)
	auditService := audit.NewService(audit.NewPostgresRepository(pool), log)

	// Identity provider; its role reads back every outranking decision.
	authService := auth.NewService(
		auth.NewPostgresUserRepository(pool),
		auth.NewRedisSessionRepository(rdb),
		jwtSvc,
		permService,
		log,
	)

	// Ban registry; doubles as the gate that keeps suspended users out of
	// the submission and reporting surfaces.
	banService := ban.NewService(ban.NewPostgresRepository(pool), permService, authService, trustService, dispatcher, log)
	banGate := middleware.RequireNotBanned(banService)

	// Content catalogue and the two moderation state machines.
	listingRepository := listing.NewPostgresRepository(pool)
	listingService := listing.NewService(listingRepository, permService, trustService, dispatcher, log)
	moderationService := moderation.NewService(
		moderation.NewPostgresRepository(pool),
		listingRepository,
		permService,
		trustService,
		dispatcher,
		log,
	)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       auth.NewHandler(authService),
		Listing:    listing.NewHandler(listingService, banGate),
		Ban:        ban.NewHandler(banService),
		Moderation: moderation.NewHandler(moderationService, banGate),
		Trust:      trust.NewHandler(trustService),
		Perm:       perm.NewHandler(permService),
		Audit:      audit.NewHandler(auditService),
	}

	server := api.NewServer(context.Background(), cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
