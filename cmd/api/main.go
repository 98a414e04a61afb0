// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Madhouse admin HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build security, mail and storage adapters.
//  7. Wire domain services, guards and HTTP handlers.
//  8. Start the event status sweeper.
//  9. Start HTTP server with graceful shutdown.
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
	"sync"
	"syscall"
	"time"

	"github.com/taibuivan/madhouse/internal/api"
	"github.com/taibuivan/madhouse/internal/auth"
	"github.com/taibuivan/madhouse/internal/contacts"
	"github.com/taibuivan/madhouse/internal/events"
	"github.com/taibuivan/madhouse/internal/platform/config"
	"github.com/taibuivan/madhouse/internal/platform/constants"
	"github.com/taibuivan/madhouse/internal/platform/mail"
	"github.com/taibuivan/madhouse/internal/platform/middleware"
	"github.com/taibuivan/madhouse/internal/platform/migration"
	pgstore "github.com/taibuivan/madhouse/internal/platform/postgres"
	redisstore "github.com/taibuivan/madhouse/internal/platform/redis"
	"github.com/taibuivan/madhouse/internal/platform/sec"
	"github.com/taibuivan/madhouse/internal/platform/storage"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
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

	// ── 6. Adapters ───────────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	hasher := sec.NewPasswordHasher(sec.DefaultPasswordCost)
	mailer := newMailer(cfg, log)
	uploader := newUploader(startupCtx, cfg, log)
	locker := redisstore.NewLocker(rdb, constants.RedisPrefixRecoveryLock,
		redisstore.WithLockTTL(auth.RecoveryLockTTL(cfg.StoreTimeout)),
		redisstore.WithLockLogger(log),
	)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(
		auth.NewAccountRepository(pool),
		tokens,
		hasher,
		mailer,
		auth.Settings{
			AccessTokenTTL:  cfg.AccessTokenTTL,
			RefreshTokenTTL: cfg.RefreshTokenTTL,
			OTPTTL:          cfg.OTPTTL,
			StoreTimeout:    cfg.StoreTimeout,
		},
		auth.WithLocker(locker),
	)
	cookies := auth.NewCookieWriter(auth.CookieSettings{
		Production:      cfg.IsProduction(),
		Domain:          cfg.CookieDomain,
		AccessHTTPOnly:  cfg.AccessCookieHTTPOnly,
		FallbackEnabled: cfg.FallbackCookieEnabled,
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
	})
	guards := middleware.NewGuards(tokens, authService, cfg.StoreTimeout)

	eventService := events.NewService(events.NewPostgresRepository(pool), uploader, cfg.StoreTimeout)

	contactService := contacts.NewService(contacts.NewPostgresRepository(pool), tokens, mailer, contacts.Settings{
		AppURL:       cfg.AppURL,
		StoreTimeout: cfg.StoreTimeout,
		Concurrency:  cfg.BulkEmailConcurrency,
	})

	// ── 9. Background Jobs ────────────────────────────────────────────────
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	var jobs sync.WaitGroup

	sweeper := events.NewSweeper(eventService, cfg.EventSweepInterval, cfg.StoreTimeout, log)
	jobs.Add(1)
	go func() {
		defer jobs.Done()
		sweeper.Run(jobsCtx)
	}()

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cookies),
		Events:    events.NewHandler(eventService),
		Contacts:  contacts.NewHandler(contactService),
	}

	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()

	server := api.NewServer(serverCtx, cfg, log, guards, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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

	// Stop scheduling sweeps; an in-flight sweep finishes within its timeout.
	stopJobs()
	jobs.Wait()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newMailer relays through SMTP when credentials are present and logs
// messages otherwise.
func newMailer(cfg *config.Config, log *slog.Logger) mail.Sender {
	if cfg.SMTPUsername == "" {
		log.Warn("smtp_not_configured", slog.String("fallback", "log"))
		return mail.NewLogSender(log)
	}

	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	must(log, err, "initialize smtp sender")
	return sender
}

func newUploader(ctx context.Context, cfg *config.Config, log *slog.Logger) storage.Uploader {
	if cfg.S3Bucket == "" {
		log.Warn("object_storage_not_configured")
		return storage.Unconfigured{}
	}

	uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
	must(log, err, "initialize object storage")
	return uploader
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
