package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/abitbot/itmo-masters-bot/internal/stringutil"
)

// ReplaceAllPrograms replaces the whole program catalog in a single transaction.
// Insertion order is preserved through the autoincrement id, so the first
// record in the slice stays the first match for name queries. An empty slice
// clears the table.
func (db *DB) ReplaceAllPrograms(ctx context.Context, programs []*Program) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM programs"); err != nil {
		return fmt.Errorf("delete existing programs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO programs (name, name_fold, code, duration, description, url, curriculum_count, competencies, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	start := time.Now()
	loadedAt := time.Now().Unix()
	for _, p := range programs {
		competenciesJSON, err := json.Marshal(p.Competencies)
		if err != nil {
			return fmt.Errorf("marshal competencies for %s: %w", p.Name, err)
		}

		_, err = stmt.ExecContext(ctx,
			p.Name,
			stringutil.Fold(p.Name),
			p.Code,
			p.Duration,
			p.Description,
			p.URL,
			p.CurriculumCount,
			string(competenciesJSON),
			loadedAt,
		)
		if err != nil {
			slog.ErrorContext(ctx, "failed to insert program",
				"program", p.Name,
				"error", err)
			return fmt.Errorf("insert program %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	duration := time.Since(start)
	slog.DebugContext(ctx, "program catalog replaced",
		"count", len(programs),
		"duration_ms", duration.Milliseconds())

	if duration > 500*time.Millisecond {
		slog.WarnContext(ctx, "slow batch operation",
			"operation", "ReplaceAllPrograms",
			"count", len(programs),
			"duration_ms", duration.Milliseconds())
	}

	return nil
}

// ListPrograms returns all programs in catalog load order.
func (db *DB) ListPrograms(ctx context.Context) ([]Program, error) {
	query := `
		SELECT id, name, code, duration, description, url, curriculum_count, competencies, loaded_at
		FROM programs
		ORDER BY id
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var programs []Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}

	return programs, nil
}

// FindProgram returns the first program whose name contains the query,
// compared case-insensitively. Both sides go through stringutil.Fold
// because the catalog is Cyrillic and SQLite's lower() only folds ASCII.
// Returns nil without error when nothing matches.
func (db *DB) FindProgram(ctx context.Context, query string) (*Program, error) {
	stmt := `
		SELECT id, name, code, duration, description, url, curriculum_count, competencies, loaded_at
		FROM programs
		WHERE instr(name_fold, ?) > 0
		ORDER BY id
		LIMIT 1
	`

	rows, err := db.conn.QueryContext(ctx, stmt, stringutil.Fold(query))
	if err != nil {
		return nil, fmt.Errorf("find program: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("find program: %w", err)
		}
		return nil, nil
	}

	p, err := scanProgram(rows)
	if err != nil {
		return nil, fmt.Errorf("scan program: %w", err)
	}

	return p, nil
}

// CountPrograms returns the number of programs in the catalog.
func (db *DB) CountPrograms(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM programs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	return count, nil
}

// scanProgram reads one program row. Optional columns come back as NULL
// from snapshots written before those columns existed.
func scanProgram(rows *sql.Rows) (*Program, error) {
	var p Program
	var code, duration, description, url, competencies sql.NullString

	err := rows.Scan(
		&p.ID,
		&p.Name,
		&code,
		&duration,
		&description,
		&url,
		&p.CurriculumCount,
		&competencies,
		&p.LoadedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Code = code.String
	p.Duration = duration.String
	p.Description = description.String
	p.URL = url.String
	p.Competencies = parseStringArray(competencies.String)

	return &p, nil
}

// parseStringArray parses a JSON array column into a slice.
// Empty, null, or malformed values yield nil.
func parseStringArray(jsonStr string) []string {
	if jsonStr == "" || jsonStr == "[]" || jsonStr == "null" {
		return nil
	}

	var result []string
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil
	}
	if len(result) == 0 {
		return nil
	}

	return result
}
