package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ReplaceAllCurriculum replaces the whole curriculum table in a single
// transaction, preserving source row order through the autoincrement id.
// An empty slice clears the table.
func (db *DB) ReplaceAllCurriculum(ctx context.Context, curriculum []*CurriculumRow) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM curriculum"); err != nil {
		return fmt.Errorf("delete existing curriculum: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO curriculum (program, semester, subject, credits, loaded_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	start := time.Now()
	loadedAt := time.Now().Unix()
	for _, row := range curriculum {
		_, err = stmt.ExecContext(ctx, row.Program, row.Semester, row.Subject, row.Credits, loadedAt)
		if err != nil {
			slog.ErrorContext(ctx, "failed to insert curriculum row",
				"program", row.Program,
				"subject", row.Subject,
				"error", err)
			return fmt.Errorf("insert curriculum row %s: %w", row.Subject, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	duration := time.Since(start)
	slog.DebugContext(ctx, "curriculum replaced",
		"count", len(curriculum),
		"duration_ms", duration.Milliseconds())

	if duration > 500*time.Millisecond {
		slog.WarnContext(ctx, "slow batch operation",
			"operation", "ReplaceAllCurriculum",
			"count", len(curriculum),
			"duration_ms", duration.Milliseconds())
	}

	return nil
}

// CurriculumForProgram returns curriculum rows whose program column contains
// the given name. The match is a byte-level substring, so unlike program name
// resolution it is case sensitive. Rows come back ordered by semester, then
// by source file order within each semester.
func (db *DB) CurriculumForProgram(ctx context.Context, programName string) ([]CurriculumRow, error) {
	query := `
		SELECT program, semester, subject, credits, loaded_at
		FROM curriculum
		WHERE instr(program, ?) > 0
		ORDER BY semester, id
	`

	rows, err := db.conn.QueryContext(ctx, query, programName)
	if err != nil {
		return nil, fmt.Errorf("query curriculum: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var curriculum []CurriculumRow
	for rows.Next() {
		var row CurriculumRow
		if err := rows.Scan(&row.Program, &row.Semester, &row.Subject, &row.Credits, &row.LoadedAt); err != nil {
			return nil, fmt.Errorf("scan curriculum row: %w", err)
		}
		curriculum = append(curriculum, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curriculum: %w", err)
	}

	return curriculum, nil
}

// CountCurriculumRows returns the number of curriculum rows.
func (db *DB) CountCurriculumRows(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM curriculum").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count curriculum rows: %w", err)
	}
	return count, nil
}
