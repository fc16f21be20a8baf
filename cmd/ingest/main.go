// Package main provides the dataset ingest tool. It fetches each program
// page from the admission site, writes the catalog artifacts the bot
// loads at startup and optionally publishes them as a compressed
// snapshot for other instances to restore.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/abitbot/itmo-masters-bot/internal/config"
	"github.com/abitbot/itmo-masters-bot/internal/data"
	"github.com/abitbot/itmo-masters-bot/internal/dataset"
	"github.com/abitbot/itmo-masters-bot/internal/ingest"
	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
	"github.com/abitbot/itmo-masters-bot/internal/r2client"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// CLI flags
var (
	dryRunFlag    = flag.Bool("dry-run", false, "Fetch and parse without writing dataset files")
	noPublishFlag = flag.Bool("no-publish", false, "Skip snapshot publishing even when R2 is enabled")
	timeoutFlag   = flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
)

func main() {
	// Parse command-line flags
	flag.Parse()

	// Load configuration without the Telegram requirements
	cfg, err := config.LoadForMode(config.ToolMode)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting dataset ingest")

	m := metrics.New(prometheus.NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	// Fetch and parse all program pages
	client := ingest.NewClient(cfg.ScraperTimeout, config.ScraperRateLimit, cfg.ScraperMaxRetries)
	pipeline := ingest.NewPipeline(client, data.MasterPrograms, m, log)

	startTime := time.Now()
	records, err := pipeline.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Ingest failed")
		fmt.Fprintf(os.Stderr, "❌ Ingest failed: %v\n", err)
		os.Exit(1)
	}

	subjects := 0
	for _, rec := range records {
		subjects += len(rec.Curriculum)
	}
	log.WithField("programs", len(records)).
		WithField("subjects", subjects).
		Info("Program pages fetched")

	if len(records) < len(data.MasterPrograms) {
		log.Warnf("Fetched %d of %d programs, the rest were skipped", len(records), len(data.MasterPrograms))
	}

	if *dryRunFlag {
		fmt.Printf("✅ Dry run: %d programs, %d subjects parsed in %v\n",
			len(records), subjects, time.Since(startTime).Round(time.Second))
		return
	}

	// Write the catalog artifacts
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.WithError(err).Fatal("Failed to create data directory")
	}
	if err := dataset.WritePrograms(cfg.ProgramsPath(), records); err != nil {
		log.WithError(err).Fatal("Failed to write programs file")
	}
	if err := dataset.WriteCurriculum(cfg.CurriculumPath(), records); err != nil {
		log.WithError(err).Fatal("Failed to write curriculum file")
	}
	log.WithField("programs_file", cfg.ProgramsPath()).
		WithField("curriculum_file", cfg.CurriculumPath()).
		Info("Dataset files written")
	fmt.Printf("✓ Dataset written: %d programs, %d subjects\n", len(records), subjects)

	// Load the artifacts back the way the bot does at startup, so a
	// broken write never reaches a published snapshot.
	if err := validateArtifacts(ctx, cfg, m, log); err != nil {
		log.WithError(err).Fatal("Dataset validation failed")
	}
	fmt.Println("✓ Dataset loads cleanly")

	if err := publishSnapshot(ctx, cfg, m, log); err != nil {
		log.WithError(err).Error("Snapshot publish failed")
		fmt.Fprintf(os.Stderr, "❌ Snapshot publish failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Ingest complete in %v\n", time.Since(startTime).Round(time.Second))
}

// validateArtifacts loads the freshly written files into an in-memory
// catalog using the same loader as the bot.
func validateArtifacts(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) error {
	db, err := storage.New(":memory:")
	if err != nil {
		return fmt.Errorf("open validation catalog: %w", err)
	}
	defer func() { _ = db.Close() }()

	result, err := dataset.NewLoader(db, m, log, cfg.ProgramsPath(), cfg.CurriculumPath()).Load(ctx)
	if err != nil {
		return err
	}
	if result.Programs == 0 {
		return fmt.Errorf("no programs loaded from written files")
	}
	return nil
}

// publishSnapshot uploads the dataset artifacts to R2. A run where
// another publisher holds the lock is not an error; the snapshot store
// logs and records it as skipped.
func publishSnapshot(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) error {
	if *noPublishFlag || !cfg.R2.Enabled {
		log.Debug("Snapshot publishing disabled")
		return nil
	}

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2.Endpoint(),
		AccessKeyID: cfg.R2.AccessKeyID,
		SecretKey:   cfg.R2.SecretAccessKey,
		BucketName:  cfg.R2.BucketName,
	})
	if err != nil {
		return fmt.Errorf("create R2 client: %w", err)
	}

	snapshots := r2client.NewSnapshotStore(client, r2client.SnapshotConfig{
		Prefix:  cfg.R2.SnapshotPrefix,
		LockKey: cfg.R2.LockKey,
		LockTTL: cfg.R2.LockTTL,
	}, m, log)

	publishCtx, publishCancel := context.WithTimeout(ctx, config.SnapshotUpload)
	defer publishCancel()

	if err := snapshots.Publish(publishCtx, cfg.DataDir, cfg.ProgramsFile, cfg.CurriculumFile); err != nil {
		return err
	}

	fmt.Println("✓ Snapshot published")
	return nil
}
