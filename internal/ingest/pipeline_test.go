package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abitbot/itmo-masters-bot/internal/data"
	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
)

func programPage(title, duration string) string {
	return fmt.Sprintf(`
	<html><body>
		<script id="__NEXT_DATA__" type="application/json">
		{
			"props": {"pageProps": {"program": {
				"title": %q,
				"educationDuration": %q,
				"about": "Описание программы",
				"competencies": ["Навык один", "Навык два"],
				"disciplines": [
					{"semester": 1, "name": "Предмет А", "credits": "3"},
					{"semester": 2, "name": "Предмет Б", "credits": "4"}
				]
			}}}
		}
		</script>
	</body></html>
	`, title, duration)
}

func newTestPipeline(t *testing.T, sources []data.ProgramSource) *Pipeline {
	t.Helper()

	m := metrics.New(prometheus.NewRegistry())
	log := logger.New("error")
	return NewPipeline(newTestClient(0), sources, m, log)
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/program/master/ai":
			_, _ = fmt.Fprint(w, programPage("Искусственный интеллект", "2 года"))
		case "/program/master/ai_product":
			_, _ = fmt.Fprint(w, programPage("AI Product", "2 года"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sources := []data.ProgramSource{
		{Name: "Искусственный интеллект", Code: "01.04.02", URL: server.URL + "/program/master/ai"},
		{Name: "Управление ИИ-продуктами", Code: "38.04.05", URL: server.URL + "/program/master/ai_product"},
	}

	records, err := newTestPipeline(t, sources).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	// Source order survives concurrent fetching
	if records[0].ProgramName != "Искусственный интеллект" {
		t.Errorf("Expected first record 'Искусственный интеллект', got %q", records[0].ProgramName)
	}
	if records[1].ProgramName != "Управление ИИ-продуктами" {
		t.Errorf("Expected curated name to win over page title, got %q", records[1].ProgramName)
	}

	first := records[0]
	if first.ProgramCode != "01.04.02" {
		t.Errorf("Expected code from source list, got %q", first.ProgramCode)
	}
	if first.Duration != "2 года" {
		t.Errorf("Expected duration from page, got %q", first.Duration)
	}
	if first.URL != sources[0].URL {
		t.Errorf("Expected source URL, got %q", first.URL)
	}
	if len(first.Curriculum) != 2 || len(first.Competencies) != 2 {
		t.Errorf("Expected 2 subjects and 2 competencies, got %d and %d",
			len(first.Curriculum), len(first.Competencies))
	}
}

func TestPipeline_Run_SkipsFailedPage(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = fmt.Fprint(w, programPage("Искусственный интеллект", "2 года"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	sources := []data.ProgramSource{
		{Name: "Пропавшая программа", URL: server.URL + "/gone"},
		{Name: "Искусственный интеллект", URL: server.URL + "/ok"},
	}

	records, err := newTestPipeline(t, sources).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected partial success, got error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record after skipping failed page, got %d", len(records))
	}
	if records[0].ProgramName != "Искусственный интеллект" {
		t.Errorf("Unexpected surviving record %q", records[0].ProgramName)
	}
}

func TestPipeline_Run_AllPagesFailed(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	sources := []data.ProgramSource{
		{Name: "Первая", URL: server.URL + "/a"},
		{Name: "Вторая", URL: server.URL + "/b"},
	}

	_, err := newTestPipeline(t, sources).Run(context.Background())
	if err == nil {
		t.Fatal("Expected error when every page fails")
	}
}

func TestPipeline_Run_ContextCanceled(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, programPage("Искусственный интеллект", "2 года"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := []data.ProgramSource{
		{Name: "Искусственный интеллект", URL: server.URL + "/ai"},
	}

	_, err := newTestPipeline(t, sources).Run(ctx)
	if err == nil {
		t.Fatal("Expected error for canceled context")
	}
}
