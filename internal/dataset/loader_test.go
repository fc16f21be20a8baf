package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
)

func testRecords() []ProgramRecord {
	return []ProgramRecord{
		{
			ProgramName: "Искусственный интеллект",
			ProgramCode: "01.04.02",
			Duration:    "2 года",
			Description: "Подготовка инженеров машинного обучения",
			Curriculum: []CurriculumEntry{
				{Semester: 1, Subject: "Математическая статистика", Credits: "4"},
				{Semester: 1, Subject: "Основы машинного обучения", Credits: "6"},
				{Semester: 2, Subject: "Глубокое обучение", Credits: "6"},
			},
			Competencies: []string{
				"Разработка моделей машинного обучения",
				"Проектирование, обучение и внедрение нейронных сетей",
			},
		},
		{
			ProgramName: "AI Product Management",
			ProgramCode: "38.04.05",
			Duration:    "2 года",
			Curriculum: []CurriculumEntry{
				{Semester: 1, Subject: "Продуктовая аналитика", Credits: "4"},
			},
			Competencies: []string{"Управление жизненным циклом ML-продукта"},
		},
	}
}

func setupLoader(t *testing.T, programsPath, curriculumPath string) (*Loader, *storage.DB) {
	t.Helper()

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New(prometheus.NewRegistry())
	log := logger.New("error")

	return NewLoader(db, m, log, programsPath, curriculumPath), db
}

func writeTestFiles(t *testing.T, records []ProgramRecord) (string, string) {
	t.Helper()
	dir := t.TempDir()
	programsPath := filepath.Join(dir, "itmo_programs_data.json")
	curriculumPath := filepath.Join(dir, "itmo_curriculum.csv")

	if err := WritePrograms(programsPath, records); err != nil {
		t.Fatalf("WritePrograms failed: %v", err)
	}
	if err := WriteCurriculum(curriculumPath, records); err != nil {
		t.Fatalf("WriteCurriculum failed: %v", err)
	}

	return programsPath, curriculumPath
}

func TestLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	programsPath, curriculumPath := writeTestFiles(t, testRecords())
	loader, db := setupLoader(t, programsPath, curriculumPath)
	ctx := context.Background()

	result, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if result.Programs != 2 {
		t.Errorf("Expected 2 programs, got %d", result.Programs)
	}
	if result.CurriculumRows != 4 {
		t.Errorf("Expected 4 curriculum rows, got %d", result.CurriculumRows)
	}

	// Program fields and the JSON-derived curriculum count survive the trip
	program, err := db.FindProgram(ctx, "искусственный интеллект")
	if err != nil {
		t.Fatalf("FindProgram failed: %v", err)
	}
	if program == nil {
		t.Fatal("Program not found after load")
	}
	if program.CurriculumCount != 3 {
		t.Errorf("CurriculumCount = %d, want 3", program.CurriculumCount)
	}
	if len(program.Competencies) != 2 {
		t.Errorf("Expected 2 competencies, got %d", len(program.Competencies))
	}

	// Curriculum rows keep file order within ascending semesters
	rows, err := db.CurriculumForProgram(ctx, "Искусственный интеллект")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 curriculum rows, got %d", len(rows))
	}
	if rows[0].Subject != "Математическая статистика" || rows[2].Subject != "Глубокое обучение" {
		t.Errorf("Unexpected row order: %q, %q, %q", rows[0].Subject, rows[1].Subject, rows[2].Subject)
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	loader, db := setupLoader(t,
		filepath.Join(dir, "missing.json"),
		filepath.Join(dir, "missing.csv"))
	ctx := context.Background()

	result, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load with missing files must not fail: %v", err)
	}

	if result.Programs != 0 || result.CurriculumRows != 0 {
		t.Errorf("Expected empty result, got %d programs / %d rows", result.Programs, result.CurriculumRows)
	}

	count, err := db.CountPrograms(ctx)
	if err != nil {
		t.Fatalf("CountPrograms failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty catalog, got %d programs", count)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	programsPath := filepath.Join(dir, "programs.json")
	if err := os.WriteFile(programsPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Curriculum stays valid, only the JSON side degrades
	_, curriculumPath := writeTestFiles(t, testRecords())
	loader, db := setupLoader(t, programsPath, curriculumPath)
	ctx := context.Background()

	result, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load with malformed JSON must not fail: %v", err)
	}

	if result.Programs != 0 {
		t.Errorf("Expected 0 programs from malformed JSON, got %d", result.Programs)
	}
	if result.CurriculumRows != 4 {
		t.Errorf("Expected curriculum to load independently, got %d rows", result.CurriculumRows)
	}

	rows, err := db.CurriculumForProgram(ctx, "AI Product Management")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected 1 curriculum row, got %d", len(rows))
	}
}

func TestLoad_MissingCSVColumns(t *testing.T) {
	t.Parallel()
	programsPath, _ := writeTestFiles(t, testRecords())
	dir := t.TempDir()
	curriculumPath := filepath.Join(dir, "curriculum.csv")
	content := "course,term\nML,1\n"
	if err := os.WriteFile(curriculumPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loader, _ := setupLoader(t, programsPath, curriculumPath)

	result, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load with bad CSV header must not fail: %v", err)
	}

	if result.CurriculumRows != 0 {
		t.Errorf("Expected 0 rows for bad header, got %d", result.CurriculumRows)
	}
	if result.Programs != 2 {
		t.Errorf("Expected programs to load independently, got %d", result.Programs)
	}
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	curriculumPath := filepath.Join(dir, "curriculum.csv")
	content := "program,semester,subject,credits\n" +
		"Искусственный интеллект,1,Математическая статистика,4\n" +
		"Искусственный интеллект,первый,Плохая строка,3\n" +
		"Искусственный интеллект,2,Глубокое обучение,6\n"
	if err := os.WriteFile(curriculumPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loader, db := setupLoader(t, filepath.Join(dir, "missing.json"), curriculumPath)
	ctx := context.Background()

	result, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if result.CurriculumRows != 2 {
		t.Errorf("Expected 2 parseable rows, got %d", result.CurriculumRows)
	}

	rows, err := db.CurriculumForProgram(ctx, "Искусственный интеллект")
	if err != nil {
		t.Fatalf("CurriculumForProgram failed: %v", err)
	}
	for _, row := range rows {
		if row.Subject == "Плохая строка" {
			t.Error("Malformed row must be skipped")
		}
	}
}

func TestLoad_ReplacesPreviousDataset(t *testing.T) {
	t.Parallel()
	programsPath, curriculumPath := writeTestFiles(t, testRecords())
	loader, db := setupLoader(t, programsPath, curriculumPath)
	ctx := context.Background()

	if _, err := loader.Load(ctx); err != nil {
		t.Fatalf("First load failed: %v", err)
	}

	// Rewrite sources with a single program and reload
	replacement := testRecords()[:1]
	if err := WritePrograms(programsPath, replacement); err != nil {
		t.Fatalf("WritePrograms failed: %v", err)
	}
	if err := WriteCurriculum(curriculumPath, replacement); err != nil {
		t.Fatalf("WriteCurriculum failed: %v", err)
	}

	result, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if result.Programs != 1 {
		t.Errorf("Expected 1 program after reload, got %d", result.Programs)
	}

	old, err := db.FindProgram(ctx, "ai product")
	if err != nil {
		t.Fatalf("FindProgram failed: %v", err)
	}
	if old != nil {
		t.Errorf("Replaced program still present: %q", old.Name)
	}
}

func TestWriteCurriculum_HeaderAndOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "curriculum.csv")

	if err := WriteCurriculum(path, testRecords()); err != nil {
		t.Fatalf("WriteCurriculum failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	content := string(data)
	wantHeader := "program,semester,subject,credits\n"
	if len(content) < len(wantHeader) || content[:len(wantHeader)] != wantHeader {
		t.Errorf("Unexpected header in %q", content)
	}
}
