package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abitbot/itmo-masters-bot/internal/data"
	"github.com/abitbot/itmo-masters-bot/internal/dataset"
	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
)

// ModuleName identifies this module in logs.
const ModuleName = "ingest"

// maxConcurrentFetches caps parallel page downloads. The shared rate
// limiter spaces requests out anyway; this only bounds goroutines.
const maxConcurrentFetches = 2

// Pipeline fetches every configured program page and assembles catalog
// records from the parsed payloads.
type Pipeline struct {
	client  *Client
	sources []data.ProgramSource
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewPipeline creates a pipeline over the given program sources.
func NewPipeline(client *Client, sources []data.ProgramSource, m *metrics.Metrics, log *logger.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		sources: sources,
		metrics: m,
		log:     log.WithModule(ModuleName),
	}
}

// Run downloads and parses all program pages, preserving source order.
// Pages that fail are skipped so one broken page does not sink the
// whole refresh; the run errors only when every page failed or the
// context was cancelled.
func (p *Pipeline) Run(ctx context.Context) ([]dataset.ProgramRecord, error) {
	results := make([]*dataset.ProgramRecord, len(p.sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, src := range p.sources {
		i, src := i, src
		g.Go(func() error {
			record, err := p.fetchProgram(ctx, src)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.log.WithError(err).Error("Skipping program page", "program", src.Name, "url", src.URL)
				return nil
			}
			results[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]dataset.ProgramRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("all %d program pages failed", len(p.sources))
	}
	return records, nil
}

func (p *Pipeline) fetchProgram(ctx context.Context, src data.ProgramSource) (*dataset.ProgramRecord, error) {
	startTime := time.Now()

	doc, err := p.client.GetDocument(ctx, src.URL)
	if err != nil {
		p.metrics.RecordScraperRequest("program", "error", time.Since(startTime).Seconds())
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}

	page, err := ParseProgramPage(doc)
	if err != nil {
		p.metrics.RecordScraperRequest("program", "error", time.Since(startTime).Seconds())
		return nil, fmt.Errorf("parse %s: %w", src.URL, err)
	}
	p.metrics.RecordScraperRequest("program", "success", time.Since(startTime).Seconds())

	record := buildRecord(src, page)
	p.log.Infof("Fetched program %q: %d subjects, %d competencies",
		record.ProgramName, len(record.Curriculum), len(record.Competencies))
	return &record, nil
}

// buildRecord merges the curated source entry with the scraped page.
// The curated name wins so catalog keys stay stable when the site
// rewords its page titles.
func buildRecord(src data.ProgramSource, page *PageData) dataset.ProgramRecord {
	record := dataset.ProgramRecord{
		ProgramName:  src.Name,
		ProgramCode:  src.Code,
		URL:          src.URL,
		Duration:     page.Duration,
		Description:  page.Description,
		Competencies: page.Competencies,
		Curriculum:   page.Curriculum,
	}
	if record.ProgramName == "" {
		record.ProgramName = page.Title
	}
	return record
}
