package storage

import (
	"context"
	"testing"
)

func testCurriculum() []*CurriculumRow {
	return []*CurriculumRow{
		{Program: "Искусственный интеллект", Semester: 2, Subject: "Глубокое обучение", Credits: "6"},
		{Program: "Искусственный интеллект", Semester: 1, Subject: "Математическая статистика", Credits: "4"},
		{Program: "Искусственный интеллект", Semester: 1, Subject: "Основы машинного обучения", Credits: "6"},
		{Program: "AI Product Management", Semester: 1, Subject: "Продуктовая аналитика", Credits: "4"},
	}
}

func TestCurriculumForProgram_FiltersAndOrders(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	if err := db.ReplaceAllCurriculum(ctx, testCurriculum()); err != nil {
		t.Fatalf("ReplaceAllCurriculum failed: %v", err)
	}

	rows, err := db.CurriculumForProgram(ctx, "Искусственный интеллект")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	// Semesters ascend, and within a semester rows keep source file order
	wantSubjects := []string{
		"Математическая статистика",
		"Основы машинного обучения",
		"Глубокое обучение",
	}
	for i, want := range wantSubjects {
		if rows[i].Subject != want {
			t.Errorf("rows[%d].Subject = %q, want %q", i, rows[i].Subject, want)
		}
	}

	if rows[0].Semester != 1 || rows[2].Semester != 2 {
		t.Errorf("Unexpected semester order: %d, %d, %d", rows[0].Semester, rows[1].Semester, rows[2].Semester)
	}

	if rows[0].Credits != "4" {
		t.Errorf("rows[0].Credits = %q, want 4", rows[0].Credits)
	}
}

func TestCurriculumForProgram_NumericSemesterOrder(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	// Semester 10 must sort after 2, which lexicographic ordering would break
	rows := []*CurriculumRow{
		{Program: "Искусственный интеллект", Semester: 10, Subject: "Стажировка", Credits: "12"},
		{Program: "Искусственный интеллект", Semester: 2, Subject: "Глубокое обучение", Credits: "6"},
	}

	if err := db.ReplaceAllCurriculum(ctx, rows); err != nil {
		t.Fatalf("ReplaceAllCurriculum failed: %v", err)
	}

	got, err := db.CurriculumForProgram(ctx, "Искусственный интеллект")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}

	if got[0].Semester != 2 || got[1].Semester != 10 {
		t.Errorf("Expected semesters [2 10], got [%d %d]", got[0].Semester, got[1].Semester)
	}
}

func TestCurriculumForProgram_CaseSensitive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	if err := db.ReplaceAllCurriculum(ctx, testCurriculum()); err != nil {
		t.Fatalf("ReplaceAllCurriculum failed: %v", err)
	}

	// Unlike program name resolution the curriculum filter matches bytes
	// exactly, so a lowercased name finds nothing
	rows, err := db.CurriculumForProgram(ctx, "искусственный интеллект")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected 0 rows for lowercased name, got %d", len(rows))
	}

	rows, err = db.CurriculumForProgram(ctx, "Искусственный интеллект")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("Expected 3 rows for exact name, got %d", len(rows))
	}
}

func TestCurriculumForProgram_SubstringMatch(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	// Rows whose program column merely contains the name also match
	rows := []*CurriculumRow{
		{Program: "Искусственный интеллект", Semester: 1, Subject: "Машинное обучение", Credits: "6"},
		{Program: "Искусственный интеллект в биомедицине", Semester: 1, Subject: "Биоинформатика", Credits: "4"},
	}

	if err := db.ReplaceAllCurriculum(ctx, rows); err != nil {
		t.Fatalf("ReplaceAllCurriculum failed: %v", err)
	}

	got, err := db.CurriculumForProgram(ctx, "Искусственный интеллект")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}

	if len(got) != 2 {
		t.Errorf("Expected 2 rows via substring containment, got %d", len(got))
	}
}

func TestReplaceAllCurriculum_EmptyClearsTable(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	if err := db.ReplaceAllCurriculum(ctx, testCurriculum()); err != nil {
		t.Fatalf("ReplaceAllCurriculum failed: %v", err)
	}

	if err := db.ReplaceAllCurriculum(ctx, nil); err != nil {
		t.Fatalf("ReplaceAllCurriculum with empty slice failed: %v", err)
	}

	count, err := db.CountCurriculumRows(ctx)
	if err != nil {
		t.Fatalf("CountCurriculumRows failed: %v", err)
	}

	if count != 0 {
		t.Errorf("Expected empty curriculum, got %d rows", count)
	}
}
