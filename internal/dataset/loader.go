package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
)

// Loader reads the catalog source files and replaces the storage tables.
// File problems never fail a load: an absent or malformed source yields an
// empty dataset so the bot starts and answers with its unavailability
// messages instead of crashing. Only storage failures surface as errors.
type Loader struct {
	store          storage.CatalogWriter
	metrics        *metrics.Metrics
	log            *logger.Logger
	programsPath   string
	curriculumPath string
}

// NewLoader creates a dataset loader.
func NewLoader(store storage.CatalogWriter, m *metrics.Metrics, log *logger.Logger, programsPath, curriculumPath string) *Loader {
	return &Loader{
		store:          store,
		metrics:        m,
		log:            log.WithModule("dataset"),
		programsPath:   programsPath,
		curriculumPath: curriculumPath,
	}
}

// LoadResult reports how many records each dataset contributed.
type LoadResult struct {
	Programs       int
	CurriculumRows int
}

// Load reads both source files and replaces the catalog tables.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	records := l.readPrograms()
	rows := l.readCurriculum()

	programs := make([]*storage.Program, 0, len(records))
	for _, rec := range records {
		programs = append(programs, &storage.Program{
			Name:            rec.ProgramName,
			Code:            rec.ProgramCode,
			Duration:        rec.Duration,
			Description:     rec.Description,
			URL:             rec.URL,
			CurriculumCount: len(rec.Curriculum),
			Competencies:    rec.Competencies,
		})
	}

	curriculum := make([]*storage.CurriculumRow, 0, len(rows))
	for i := range rows {
		curriculum = append(curriculum, &rows[i])
	}

	if err := l.store.ReplaceAllPrograms(ctx, programs); err != nil {
		return nil, fmt.Errorf("replace programs: %w", err)
	}

	if err := l.store.ReplaceAllCurriculum(ctx, curriculum); err != nil {
		return nil, fmt.Errorf("replace curriculum: %w", err)
	}

	l.metrics.SetDatasetRecords("programs", len(programs))
	l.metrics.SetDatasetRecords("curriculum", len(curriculum))

	l.log.Info("dataset loaded",
		"programs", len(programs),
		"curriculum_rows", len(curriculum))

	return &LoadResult{
		Programs:       len(programs),
		CurriculumRows: len(curriculum),
	}, nil
}

// readPrograms reads the programs JSON file. Absent or malformed files
// yield an empty slice.
func (l *Loader) readPrograms() []ProgramRecord {
	data, err := os.ReadFile(l.programsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("programs file not found", "path", l.programsPath)
			l.metrics.RecordDatasetLoad("programs", "missing")
		} else {
			l.log.WithError(err).Error("failed to read programs file", "path", l.programsPath)
			l.metrics.RecordDatasetLoad("programs", "error")
		}
		return nil
	}

	var records []ProgramRecord
	if err := json.Unmarshal(data, &records); err != nil {
		l.log.WithError(err).Error("failed to parse programs file", "path", l.programsPath)
		l.metrics.RecordDatasetLoad("programs", "error")
		return nil
	}

	l.metrics.RecordDatasetLoad("programs", "success")
	return records
}

// readCurriculum reads the curriculum CSV file. Absent files, unreadable
// headers, or headers missing required columns yield an empty slice.
// Individual rows that fail to parse are skipped with a warning.
func (l *Loader) readCurriculum() []storage.CurriculumRow {
	f, err := os.Open(l.curriculumPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("curriculum file not found", "path", l.curriculumPath)
			l.metrics.RecordDatasetLoad("curriculum", "missing")
		} else {
			l.log.WithError(err).Error("failed to open curriculum file", "path", l.curriculumPath)
			l.metrics.RecordDatasetLoad("curriculum", "error")
		}
		return nil
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		l.log.WithError(err).Error("failed to read curriculum header", "path", l.curriculumPath)
		l.metrics.RecordDatasetLoad("curriculum", "error")
		return nil
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF")
		colIdx[name] = i
	}

	for _, col := range curriculumColumns {
		if _, ok := colIdx[col]; !ok {
			l.log.Error("curriculum file missing required column",
				"path", l.curriculumPath,
				"column", col)
			l.metrics.RecordDatasetLoad("curriculum", "error")
			return nil
		}
	}

	var rows []storage.CurriculumRow
	var skipped int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		row, ok := parseCurriculumRecord(record, colIdx)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		l.log.Warn("skipped malformed curriculum rows",
			"path", l.curriculumPath,
			"skipped", skipped)
	}

	l.metrics.RecordDatasetLoad("curriculum", "success")
	return rows
}

// parseCurriculumRecord converts one CSV record into a curriculum row.
func parseCurriculumRecord(record []string, colIdx map[string]int) (storage.CurriculumRow, bool) {
	var row storage.CurriculumRow

	field := func(name string) (string, bool) {
		idx := colIdx[name]
		if idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	program, ok := field("program")
	if !ok || program == "" {
		return row, false
	}

	semesterText, ok := field("semester")
	if !ok {
		return row, false
	}
	semester, err := strconv.Atoi(semesterText)
	if err != nil {
		return row, false
	}

	subject, ok := field("subject")
	if !ok || subject == "" {
		return row, false
	}

	credits, _ := field("credits")

	row.Program = program
	row.Semester = semester
	row.Subject = subject
	row.Credits = credits
	return row, true
}
