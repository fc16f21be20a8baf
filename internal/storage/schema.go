package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode and other pragmas are configured in db.go.
func InitSchema(db *sql.DB) error {
	// Create programs table
	if err := createProgramsTable(db); err != nil {
		return err
	}

	// Create curriculum table
	return createCurriculumTable(db)
}

// createProgramsTable creates the table holding program catalog records.
// The autoincrement id preserves dataset load order, which determines
// first-match resolution for name queries. name_fold holds the name
// lowercased in Go because SQLite's lower() only folds ASCII and the
// catalog is mostly Cyrillic.
func createProgramsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS programs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		name_fold TEXT NOT NULL,
		code TEXT,
		duration TEXT,
		description TEXT,
		url TEXT,
		curriculum_count INTEGER NOT NULL DEFAULT 0,
		competencies TEXT,
		loaded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_programs_name_fold ON programs(name_fold);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create programs table: %w", err)
	}

	return nil
}

// createCurriculumTable creates the table holding curriculum rows.
// The autoincrement id preserves source file order so subjects list in
// their original order within each semester. semester is INTEGER so
// ordering is numeric, not lexicographic. credits stays TEXT and is
// rendered verbatim.
func createCurriculumTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS curriculum (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		program TEXT NOT NULL,
		semester INTEGER NOT NULL,
		subject TEXT NOT NULL,
		credits TEXT,
		loaded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_curriculum_program ON curriculum(program);
	CREATE INDEX IF NOT EXISTS idx_curriculum_program_semester ON curriculum(program, semester);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create curriculum table: %w", err)
	}

	return nil
}
