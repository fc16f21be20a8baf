// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core (Required)
	EnvTelegramBotToken = "ITMO_TELEGRAM_BOT_TOKEN"

	// Server
	EnvPort            = "ITMO_PORT"
	EnvLogLevel        = "ITMO_LOG_LEVEL"
	EnvShutdownTimeout = "ITMO_SHUTDOWN_TIMEOUT"

	// Telegram polling
	EnvPollTimeout = "ITMO_POLL_TIMEOUT"

	// Data
	EnvDataDir        = "ITMO_DATA_DIR"
	EnvProgramsFile   = "ITMO_PROGRAMS_FILE"
	EnvCurriculumFile = "ITMO_CURRICULUM_FILE"

	// Scraper
	EnvScraperTimeout    = "ITMO_SCRAPER_TIMEOUT"
	EnvScraperMaxRetries = "ITMO_SCRAPER_MAX_RETRIES"
	EnvScraperBaseURL    = "ITMO_SCRAPER_BASE_URL"

	// R2 Snapshot Feature
	EnvR2Enabled         = "ITMO_R2_ENABLED"
	EnvR2AccountID       = "ITMO_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "ITMO_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "ITMO_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "ITMO_R2_BUCKET_NAME"
	EnvR2SnapshotPrefix  = "ITMO_R2_SNAPSHOT_PREFIX"
	EnvR2LockKey         = "ITMO_R2_LOCK_KEY"
	EnvR2LockTTL         = "ITMO_R2_LOCK_TTL"

	// Sentry Feature
	EnvSentryDSN              = "ITMO_SENTRY_DSN"
	EnvSentryEnvironment      = "ITMO_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "ITMO_SENTRY_RELEASE"
	EnvSentrySampleRate       = "ITMO_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "ITMO_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "ITMO_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "ITMO_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "ITMO_METRICS_USERNAME"
	EnvMetricsPassword = "ITMO_METRICS_PASSWORD"
)
