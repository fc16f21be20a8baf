package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// WritePrograms writes program records as a JSON array. The file is the
// load-order source of truth, so record order is preserved as given.
func WritePrograms(path string, records []ProgramRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create programs file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode programs file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close programs file: %w", err)
	}

	return nil
}

// WriteCurriculum writes the curriculum CSV derived from the same program
// records, one row per curriculum entry, so both artifacts stay consistent.
func WriteCurriculum(path string, records []ProgramRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create curriculum file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(curriculumColumns); err != nil {
		_ = f.Close()
		return fmt.Errorf("write curriculum header: %w", err)
	}

	for _, rec := range records {
		for _, entry := range rec.Curriculum {
			row := []string{rec.ProgramName, strconv.Itoa(entry.Semester), entry.Subject, entry.Credits}
			if err := w.Write(row); err != nil {
				_ = f.Close()
				return fmt.Errorf("write curriculum row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush curriculum file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close curriculum file: %w", err)
	}

	return nil
}
