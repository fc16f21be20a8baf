// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, dataset paths, timeouts, and optional integrations.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Telegram Bot Configuration
	TelegramBotToken string
	PollTimeout      int // Long-poll timeout in seconds for getUpdates

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir        string // Directory for the SQLite catalog and dataset files
	ProgramsFile   string // Program catalog JSON file name (relative to DataDir unless absolute)
	CurriculumFile string // Curriculum CSV file name (relative to DataDir unless absolute)

	// Scraper Configuration
	ScraperTimeout    time.Duration
	ScraperMaxRetries int
	ScraperBaseURL    string

	// Optional integrations
	R2          R2Config
	Sentry      SentryConfig
	BetterStack BetterStackConfig
	Metrics     MetricsConfig
}

// R2Config holds S3/R2 snapshot sync settings.
// Disabled unless ITMO_R2_ENABLED is true and credentials are present.
type R2Config struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	SnapshotPrefix  string // Object key prefix for dataset snapshots (default: "datasets")
	LockKey         string // Object key for the ingest publish lock
	LockTTL         time.Duration
}

// Endpoint returns the S3 API endpoint for the configured R2 account.
func (r R2Config) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.AccountID)
}

// SentryConfig holds error tracking settings. Disabled when DSN is empty.
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
}

// BetterStackConfig holds remote log shipping settings.
// Disabled when Token is empty.
type BetterStackConfig struct {
	Token    string
	Endpoint string
}

// MetricsConfig holds /metrics Basic Auth settings. Empty password disables auth.
type MetricsConfig struct {
	Username string
	Password string
}

// Mode selects which validation rules apply.
type Mode int

const (
	// BotMode is the long-polling bot process, which requires Telegram
	// credentials.
	BotMode Mode = iota
	// ToolMode covers offline commands (ingest, verify) that never talk
	// to the Telegram API.
	ToolMode
)

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	return LoadForMode(BotMode)
}

// LoadForMode reads configuration with the validation rules of the
// given mode.
func LoadForMode(mode Mode) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Telegram Bot Configuration
		TelegramBotToken: getEnv(EnvTelegramBotToken, ""),
		PollTimeout:      getIntEnv(EnvPollTimeout, PollTimeoutSeconds),

		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		DataDir:        getEnv(EnvDataDir, getDefaultDataDir()),
		ProgramsFile:   getEnv(EnvProgramsFile, "itmo_programs_data.json"),
		CurriculumFile: getEnv(EnvCurriculumFile, "itmo_curriculum.csv"),

		// Scraper Configuration
		ScraperTimeout:    getDurationEnv(EnvScraperTimeout, ScraperRequest),
		ScraperMaxRetries: getIntEnv(EnvScraperMaxRetries, 10), // Max 10 retries with exponential backoff
		ScraperBaseURL:    getEnv(EnvScraperBaseURL, "https://abit.itmo.ru"),

		R2: R2Config{
			Enabled:         getBoolEnv(EnvR2Enabled, false),
			AccountID:       getEnv(EnvR2AccountID, ""),
			AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
			SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
			BucketName:      getEnv(EnvR2BucketName, ""),
			SnapshotPrefix:  getEnv(EnvR2SnapshotPrefix, "datasets"),
			LockKey:         getEnv(EnvR2LockKey, "locks/ingest"),
			LockTTL:         getDurationEnv(EnvR2LockTTL, 10*time.Minute),
		},

		Sentry: SentryConfig{
			DSN:              getEnv(EnvSentryDSN, ""),
			Environment:      getEnv(EnvSentryEnvironment, "production"),
			Release:          getEnv(EnvSentryRelease, ""),
			SampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
			TracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.1),
		},

		BetterStack: BetterStackConfig{
			Token:    getEnv(EnvBetterStackToken, ""),
			Endpoint: getEnv(EnvBetterStackEndpoint, ""),
		},

		Metrics: MetricsConfig{
			Username: getEnv(EnvMetricsUsername, "prometheus"),
			Password: getEnv(EnvMetricsPassword, ""),
		},
	}

	// Validate configuration
	if err := cfg.validate(mode); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	return c.validate(BotMode)
}

func (c *Config) validate(mode Mode) error {
	var errs []error

	if mode == BotMode {
		if c.TelegramBotToken == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvTelegramBotToken))
		}
		if c.PollTimeout <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvPollTimeout, c.PollTimeout))
		}
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.ProgramsFile == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvProgramsFile))
	}
	if c.CurriculumFile == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvCurriculumFile))
	}
	if c.ScraperTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvScraperTimeout, c.ScraperTimeout))
	}
	if c.ScraperMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvScraperMaxRetries, c.ScraperMaxRetries))
	}
	if c.R2.Enabled {
		if c.R2.AccountID == "" {
			errs = append(errs, fmt.Errorf("%s is required when R2 is enabled", EnvR2AccountID))
		}
		if c.R2.AccessKeyID == "" {
			errs = append(errs, fmt.Errorf("%s is required when R2 is enabled", EnvR2AccessKeyID))
		}
		if c.R2.SecretAccessKey == "" {
			errs = append(errs, fmt.Errorf("%s is required when R2 is enabled", EnvR2SecretAccessKey))
		}
		if c.R2.BucketName == "" {
			errs = append(errs, fmt.Errorf("%s is required when R2 is enabled", EnvR2BucketName))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}

// ProgramsPath returns the full path to the program catalog JSON file.
func (c *Config) ProgramsPath() string {
	return c.dataPath(c.ProgramsFile)
}

// CurriculumPath returns the full path to the curriculum CSV file.
func (c *Config) CurriculumPath() string {
	return c.dataPath(c.CurriculumFile)
}

func (c *Config) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
