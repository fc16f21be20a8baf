package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.UpdatesTotal == nil {
		t.Error("UpdatesTotal is nil")
	}
	if m.UpdateDurationSeconds == nil {
		t.Error("UpdateDurationSeconds is nil")
	}
	if m.IntentTotal == nil {
		t.Error("IntentTotal is nil")
	}
	if m.ProgramLookupsTotal == nil {
		t.Error("ProgramLookupsTotal is nil")
	}
	if m.RepliesTotal == nil {
		t.Error("RepliesTotal is nil")
	}
	if m.MessageChunksTotal == nil {
		t.Error("MessageChunksTotal is nil")
	}
	if m.DatasetLoadsTotal == nil {
		t.Error("DatasetLoadsTotal is nil")
	}
	if m.DatasetRecords == nil {
		t.Error("DatasetRecords is nil")
	}
	if m.SessionsActive == nil {
		t.Error("SessionsActive is nil")
	}
	if m.ScraperRequestsTotal == nil {
		t.Error("ScraperRequestsTotal is nil")
	}
	if m.SnapshotOperationsTotal == nil {
		t.Error("SnapshotOperationsTotal is nil")
	}
}

func TestRecordUpdate(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordUpdate("command", "success", 0.1)
	m.RecordUpdate("text", "error", 0.5)
	m.RecordUpdate("text", "skipped", 0.0)
}

func TestRecordIntent(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordIntent("GREETING")
	m.RecordIntent("SHOW_PROGRAMS")
	m.RecordIntent("UNKNOWN")
}

func TestRecordProgramLookup(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordProgramLookup("hit")
	m.RecordProgramLookup("miss")
}

func TestRecordDatasetLoad(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordDatasetLoad("programs", "success")
	m.RecordDatasetLoad("curriculum", "missing")
	m.SetDatasetRecords("programs", 2)
	m.SetDatasetRecords("curriculum", 57)
}

func TestRecordScraperRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordScraperRequest("program", "success", 1.5)
	m.RecordScraperRequest("curriculum", "error", 2.0)
	m.RecordScraperRequest("program", "timeout", 120.0)
}

func TestRecordSnapshotOperation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordSnapshotOperation("upload", "success")
	m.RecordSnapshotOperation("download", "skipped")
}

func TestMetrics_WithDefaultRegistry(t *testing.T) {
	// Metrics must register on the provided registry without touching the
	// default one.
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Record some metrics
	m.RecordUpdate("text", "success", 0.2)
	m.RecordIntent("SHOW_DURATION")
	m.RecordReply("success")
	m.RecordChunks(3)

	// Gather metrics to verify they were recorded
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	// Should have metrics registered
	if len(metricFamilies) == 0 {
		t.Error("No metrics were gathered")
	}

	// Check for specific metric names
	expectedMetrics := map[string]bool{
		"itmo_bot_updates_total":           false,
		"itmo_bot_update_duration_seconds": false,
		"itmo_bot_intent_total":            false,
		"itmo_bot_replies_total":           false,
		"itmo_bot_message_chunks_total":    false,
	}

	for _, mf := range metricFamilies {
		if _, ok := expectedMetrics[mf.GetName()]; ok {
			expectedMetrics[mf.GetName()] = true
		}
	}

	for name, found := range expectedMetrics {
		if !found {
			t.Errorf("Expected metric %q not found", name)
		}
	}
}
