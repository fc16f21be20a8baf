// Package stringutil provides text normalization helpers shared by
// catalog matching and the ingest pipeline.
package stringutil

import "strings"

// Fold normalizes text for case-insensitive catalog matching.
// The stored fold column and every lookup query must go through the
// same function or Cyrillic lookups silently miss: SQLite's built-in
// lower() only folds ASCII.
func Fold(s string) string {
	return strings.ToLower(s)
}

// NormalizeSpace trims s and collapses every internal whitespace run
// to a single space. Scraped page text carries newlines and doubled
// spaces from the HTML layout.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
