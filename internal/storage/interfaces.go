// Package storage provides SQLite-backed repositories for the program
// catalog and curriculum datasets. The interfaces here enable dependency
// inversion and facilitate testing by decoupling bot handlers from the
// concrete database.
package storage

import (
	"context"
)

// ProgramStore defines the program catalog read operations used by dialog handlers.
type ProgramStore interface {
	ListPrograms(ctx context.Context) ([]Program, error)
	FindProgram(ctx context.Context, query string) (*Program, error)
	CountPrograms(ctx context.Context) (int, error)
}

// CurriculumStore defines the curriculum read operations used by dialog handlers.
type CurriculumStore interface {
	CurriculumForProgram(ctx context.Context, programName string) ([]CurriculumRow, error)
	CountCurriculumRows(ctx context.Context) (int, error)
}

// CatalogStore is the aggregate read interface dialog handlers depend on
// instead of the concrete DB.
type CatalogStore interface {
	ProgramStore
	CurriculumStore
}

// CatalogWriter defines the bulk load operations used by the dataset loader.
type CatalogWriter interface {
	ReplaceAllPrograms(ctx context.Context, programs []*Program) error
	ReplaceAllCurriculum(ctx context.Context, curriculum []*CurriculumRow) error
}

// Ensure DB implements all repository interfaces at compile time.
// This provides early detection of interface implementation issues.
var (
	_ ProgramStore    = (*DB)(nil)
	_ CurriculumStore = (*DB)(nil)
	_ CatalogStore    = (*DB)(nil)
	_ CatalogWriter   = (*DB)(nil)
)
