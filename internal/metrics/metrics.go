package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Update metrics
	UpdatesTotal          *prometheus.CounterVec
	UpdateDurationSeconds *prometheus.HistogramVec

	// Intent metrics
	IntentTotal *prometheus.CounterVec

	// Program resolution metrics
	ProgramLookupsTotal *prometheus.CounterVec

	// Delivery metrics
	RepliesTotal       *prometheus.CounterVec
	MessageChunksTotal prometheus.Counter

	// Dataset metrics
	DatasetLoadsTotal *prometheus.CounterVec
	DatasetRecords    *prometheus.GaugeVec

	// Dialog metrics
	SessionsActive prometheus.Gauge

	// Scraper metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec

	// Snapshot metrics
	SnapshotOperationsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Update metrics
		UpdatesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "itmo_bot_updates_total",
				Help: "Total number of Telegram updates by type and status",
			},
			[]string{"update_type", "status"}, // update_type: command, text; status: success, error, skipped
		),

		UpdateDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "itmo_bot_update_duration_seconds",
				Help:    "Update processing duration in seconds by type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // Dialog handling is in-memory + SQLite
			},
			[]string{"update_type"},
		),

		// Intent metrics
		IntentTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "itmo_bot_intent_total",
				Help: "Total number of classified intents by action",
			},
			[]string{"action"}, // action: GREETING, SHOW_PROGRAMS, ..., UNKNOWN
		),

		// Program resolution metrics
		ProgramLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "itmo_bot_program_lookups_total",
				Help: "Total number of program name resolutions by outcome",
			},
			[]string{"outcome"}, // outcome: hit, miss
		),

		// Delivery metrics
		RepliesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "itmo_bot_replies_total",
				Help: "Total number of reply messages sent by status",
			},
			[]string{"status"}, // status: success, error
		),

		MessageChunksTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "itmo_bot_message_chunks_total",
				Help: "Total number of chunks produced for oversized replies",
			},
		),

		// Dataset metrics
		DatasetLoadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "itmo_bot_dataset_loads_total",
				Help: "Total number of dataset load attempts by dataset and status",
			},
			[]string{"dataset", "status"}, // dataset: programs, curriculum; status: success, error, missing
		),

		DatasetRecords: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "itmo_bot_dataset_records",
				Help: "Number of records currently loaded per dataset",
			},
			[]string{"dataset"},
		),

		// Dialog metrics
		SessionsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "itmo_bot_sessions_active",
				Help: "Number of dialog sessions currently held in memory",
			},
		),

		// Scraper metrics
		ScraperRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "itmo_bot_scraper_requests_total",
				Help: "Total number of scraper requests by status",
			},
			[]string{"status"}, // status: success, error, timeout, not_found
		),

		ScraperDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "itmo_bot_scraper_duration_seconds",
				Help:    "Scraper request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60}, // Matches 60s timeout + backoff
			},
			[]string{"page"}, // page: program, curriculum
		),

		// Snapshot metrics
		SnapshotOperationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "itmo_bot_snapshot_operations_total",
				Help: "Total number of dataset snapshot operations by operation and status",
			},
			[]string{"operation", "status"}, // operation: upload, download; status: success, error, skipped
		),
	}

	return m
}

// RecordUpdate records a processed Telegram update
func (m *Metrics) RecordUpdate(updateType, status string, duration float64) {
	m.UpdatesTotal.WithLabelValues(updateType, status).Inc()
	m.UpdateDurationSeconds.WithLabelValues(updateType).Observe(duration)
}

// RecordIntent records a classified intent
func (m *Metrics) RecordIntent(action string) {
	m.IntentTotal.WithLabelValues(action).Inc()
}

// RecordProgramLookup records a program resolution outcome
func (m *Metrics) RecordProgramLookup(outcome string) {
	m.ProgramLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordReply records a sent reply message
func (m *Metrics) RecordReply(status string) {
	m.RepliesTotal.WithLabelValues(status).Inc()
}

// RecordChunks records chunks produced for an oversized reply
func (m *Metrics) RecordChunks(n int) {
	m.MessageChunksTotal.Add(float64(n))
}

// RecordDatasetLoad records a dataset load attempt
func (m *Metrics) RecordDatasetLoad(dataset, status string) {
	m.DatasetLoadsTotal.WithLabelValues(dataset, status).Inc()
}

// SetDatasetRecords sets the loaded record count for a dataset
func (m *Metrics) SetDatasetRecords(dataset string, n int) {
	m.DatasetRecords.WithLabelValues(dataset).Set(float64(n))
}

// SetSessionsActive sets the number of in-memory dialog sessions
func (m *Metrics) SetSessionsActive(n int) {
	m.SessionsActive.Set(float64(n))
}

// RecordScraperRequest records a scraper request with status
func (m *Metrics) RecordScraperRequest(page, status string, duration float64) {
	m.ScraperRequestsTotal.WithLabelValues(status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(page).Observe(duration)
}

// RecordSnapshotOperation records a snapshot upload or download
func (m *Metrics) RecordSnapshotOperation(operation, status string) {
	m.SnapshotOperationsTotal.WithLabelValues(operation, status).Inc()
}
