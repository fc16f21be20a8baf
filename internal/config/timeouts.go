// Package config provides centralized timeout constants for the application.
//
// These values are tuned based on:
//   - Telegram Bot API behavior (long polling, sendMessage latency)
//   - abit.itmo.ru response times (scraping delays)
//   - SQLite performance characteristics (WAL mode, busy timeout)
package config

import "time"

// Update processing timeouts
const (
	// UpdateProcessing is the timeout for processing a single Telegram update.
	// This includes dialog state transitions, database queries, and reply
	// delivery, which may span several chunked messages.
	UpdateProcessing = 30 * time.Second

	// PollTimeoutSeconds is the default long-poll timeout passed to getUpdates.
	// Telegram holds the connection open for up to this many seconds.
	PollTimeoutSeconds = 60
)

// Ops HTTP server timeouts
const (
	// OpsHTTPRead is the HTTP server read timeout for ops endpoints.
	// Health probes and metrics scrapes send tiny requests.
	OpsHTTPRead = 10 * time.Second

	// OpsHTTPWrite is the HTTP server write timeout.
	// Metrics payloads stay small, so this mostly guards stuck clients.
	OpsHTTPWrite = 30 * time.Second

	// OpsHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	OpsHTTPIdle = 120 * time.Second
)

// Scraper timeouts
const (
	// ScraperRequest is the timeout for a single HTTP request to abit.itmo.ru.
	// Program pages are rendered server-side and can be slow during admission
	// season.
	ScraperRequest = 60 * time.Second

	// ScraperRetryInitial is the initial delay before retrying a failed request.
	// Uses exponential backoff: 4s -> 8s -> 16s -> 32s -> 64s
	ScraperRetryInitial = 4 * time.Second

	// ScraperRateLimit is the minimum delay between consecutive scraping requests.
	// Prevents overwhelming the admission site and getting blocked.
	ScraperRateLimit = 2 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention during dataset reloads.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Snapshot timeouts
const (
	// SnapshotRestore is the timeout for downloading and unpacking a dataset
	// snapshot from R2 at boot.
	SnapshotRestore = 2 * time.Minute

	// SnapshotUpload is the timeout for publishing a dataset snapshot after
	// an ingest run.
	SnapshotUpload = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight updates to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
