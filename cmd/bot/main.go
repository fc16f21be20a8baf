// Package main provides the Telegram consultant bot entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abitbot/itmo-masters-bot/internal/buildinfo"
	"github.com/abitbot/itmo-masters-bot/internal/config"
	"github.com/abitbot/itmo-masters-bot/internal/dataset"
	"github.com/abitbot/itmo-masters-bot/internal/dialog"
	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
	"github.com/abitbot/itmo-masters-bot/internal/r2client"
	"github.com/abitbot/itmo-masters-bot/internal/sentry"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
	"github.com/abitbot/itmo-masters-bot/internal/telegram"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with optional Better Stack shipping
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStack.Token,
		BetterStackEndpoint: cfg.BetterStack.Endpoint,
	})
	log = log.WithField("service", "itmo-masters-bot")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger to enable context value extraction (chat_id,
	// user_id, update_id) via ContextHandler in package-level slog calls.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.Short()).Info("Starting ITMO masters bot")
	if cfg.BetterStack.Token != "" {
		log.Info("Better Stack logging enabled")
	}

	// Initialize error tracking (no-op without a DSN)
	release := cfg.Sentry.Release
	if release == "" {
		release = buildinfo.Short()
	}
	if err := sentry.Initialize(sentry.Config{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.LogLevel == "debug",
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, error tracking disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.Sentry.Environment).Info("Sentry error tracking enabled")
	}

	// Open the catalog database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open catalog database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pull the latest dataset snapshot when local files are missing
	restoreSnapshot(ctx, cfg, m, log)

	// Load the dataset into the catalog. Missing or malformed source
	// files yield an empty catalog, not a startup failure.
	result, err := dataset.NewLoader(db, m, log, cfg.ProgramsPath(), cfg.CurriculumPath()).Load(ctx)
	if err != nil {
		log.WithError(err).Fatal("Failed to load dataset into catalog")
	}
	if result.Programs == 0 {
		log.Warn("Catalog is empty, the bot will answer with unavailability notices")
	}

	// Wire the dialog machine and the Telegram transport
	sessions := dialog.NewSessionStore(m)
	machine := dialog.NewMachine(db, sessions, m, log)

	bot, err := telegram.New(telegram.Config{
		Token:       cfg.TelegramBotToken,
		Debug:       cfg.LogLevel == "debug",
		PollTimeout: cfg.PollTimeout,
		Machine:     machine,
		Programs:    db,
		Metrics:     m,
		Logger:      log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create Telegram bot")
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// The ops router serves probes and metrics only; updates arrive over
	// long polling, not a webhook.
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	setupRoutes(router, cfg, db, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.OpsHTTPRead,
		WriteTimeout: config.OpsHTTPWrite,
		IdleTimeout:  config.OpsHTTPIdle,
	}

	// Start the long-poll loop
	botErr := make(chan error, 1)
	go func() {
		botErr <- bot.Run(ctx)
	}()

	// Start the ops server
	go func() {
		log.WithField("port", cfg.Port).Info("Ops server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start ops server")
		}
	}()

	// Wait for a shutdown signal or an unexpected bot exit
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-botErr:
		if err != nil && err != context.Canceled {
			log.WithError(err).Error("Bot stopped unexpectedly")
			sentry.CaptureException(err)
		}
	}

	log.Info("Shutting down...")

	// Stop the poll loop, then drain in-flight update workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := bot.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timeout waiting for update workers")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Ops server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	sentry.Flush(2 * time.Second)

	if err := log.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Logger shutdown timed out")
	}

	log.Info("Bot stopped")
}

// restoreSnapshot pulls the published dataset snapshot from R2 when the
// local files are missing. The bot still starts on failure and serves
// whatever is on disk.
func restoreSnapshot(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) {
	if !cfg.R2.Enabled {
		return
	}
	if fileExists(cfg.ProgramsPath()) && fileExists(cfg.CurriculumPath()) {
		log.Debug("Dataset files present, skipping snapshot restore")
		return
	}

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2.Endpoint(),
		AccessKeyID: cfg.R2.AccessKeyID,
		SecretKey:   cfg.R2.SecretAccessKey,
		BucketName:  cfg.R2.BucketName,
	})
	if err != nil {
		log.WithError(err).Warn("Snapshot restore skipped, R2 client unavailable")
		return
	}

	snapshots := r2client.NewSnapshotStore(client, r2client.SnapshotConfig{
		Prefix:  cfg.R2.SnapshotPrefix,
		LockKey: cfg.R2.LockKey,
		LockTTL: cfg.R2.LockTTL,
	}, m, log)

	restoreCtx, restoreCancel := context.WithTimeout(ctx, config.SnapshotRestore)
	defer restoreCancel()

	if err := snapshots.Restore(restoreCtx, cfg.DataDir, cfg.ProgramsFile, cfg.CurriculumFile); err != nil {
		log.WithError(err).Warn("Snapshot restore failed, using local dataset files")
		return
	}
	log.Info("Dataset restored from snapshot")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
