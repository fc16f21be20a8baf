// Package main provides the dataset consistency verification tool.
// It cross-checks the written catalog artifacts against each other and
// against the curated program list, so drift is caught before a deploy
// or a snapshot publish ships it.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/abitbot/itmo-masters-bot/internal/config"
	"github.com/abitbot/itmo-masters-bot/internal/data"
	"github.com/abitbot/itmo-masters-bot/internal/dataset"
)

// Verification results
type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	fmt.Println("🔍 ITMO Masters Bot - Dataset Verification Tool")
	fmt.Println("===============================================")

	cfg, err := config.LoadForMode(config.ToolMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Programs file:   %s\n", cfg.ProgramsPath())
	fmt.Printf("Curriculum file: %s\n", cfg.CurriculumPath())

	records, programResults := verifyProgramsFile(cfg.ProgramsPath())
	rows, curriculumResults := verifyCurriculumFile(cfg.CurriculumPath())

	results := programResults
	results = append(results, curriculumResults...)
	if records != nil && rows != nil {
		results = append(results, verifyCrossReferences(records, rows)...)
	}

	// Print results
	fmt.Println("\n📊 Verification Results:")
	fmt.Println("========================")

	passedCount := 0
	failedCount := 0

	for _, result := range results {
		status := "❌"
		if result.passed {
			status = "✅"
			passedCount++
		} else {
			failedCount++
		}
		fmt.Printf("%s %s: %s\n", status, result.name, result.message)
	}

	fmt.Printf("\n📈 Summary: %d passed, %d failed\n", passedCount, failedCount)

	if failedCount > 0 {
		os.Exit(1)
	}
}

// curatedNames returns the set of program names from the curated list.
func curatedNames() map[string]bool {
	names := make(map[string]bool, len(data.MasterPrograms))
	for _, p := range data.MasterPrograms {
		names[p.Name] = true
	}
	return names
}

// verifyProgramsFile parses the programs JSON and checks it against the
// curated program list.
func verifyProgramsFile(path string) ([]dataset.ProgramRecord, []verifyResult) {
	results := []verifyResult{}

	raw, err := os.ReadFile(path)
	if err != nil {
		results = append(results, verifyResult{
			name:    "Programs File Readable",
			passed:  false,
			message: err.Error(),
		})
		return nil, results
	}

	var records []dataset.ProgramRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		results = append(results, verifyResult{
			name:    "Programs File Parses",
			passed:  false,
			message: err.Error(),
		})
		return nil, results
	}
	results = append(results, verifyResult{
		name:    "Programs File Parses",
		passed:  true,
		message: fmt.Sprintf("%d program records", len(records)),
	})

	// Names must come from the curated list; the ingest pipeline always
	// writes the curated name, so anything else means a stale artifact.
	curated := curatedNames()
	unknown := []string{}
	seen := map[string]bool{}
	duplicates := []string{}
	badURLs := []string{}
	for _, rec := range records {
		if !curated[rec.ProgramName] {
			unknown = append(unknown, rec.ProgramName)
		} else if rec.URL != data.GetProgramURL(rec.ProgramName) {
			badURLs = append(badURLs, rec.ProgramName)
		}
		if seen[rec.ProgramName] {
			duplicates = append(duplicates, rec.ProgramName)
		}
		seen[rec.ProgramName] = true
	}

	results = append(results, verifyResult{
		name:    "Program Names Curated",
		passed:  len(unknown) == 0,
		message: summarize("all names match the curated list", "unknown names: %v", unknown),
	})
	results = append(results, verifyResult{
		name:    "Program Names Unique",
		passed:  len(duplicates) == 0,
		message: summarize("no duplicates", "duplicated names: %v", duplicates),
	})
	results = append(results, verifyResult{
		name:    "Program URLs Curated",
		passed:  len(badURLs) == 0,
		message: summarize("all URLs match the curated list", "stale URLs for: %v", badURLs),
	})
	results = append(results, verifyResult{
		name:    "Program Coverage",
		passed:  len(records) > 0 && len(records) <= data.GetProgramCount(),
		message: fmt.Sprintf("%d of %d curated programs present", len(records), data.GetProgramCount()),
	})

	return records, results
}

// verifyCurriculumFile parses the curriculum CSV and checks row shape.
func verifyCurriculumFile(path string) ([][]string, []verifyResult) {
	results := []verifyResult{}

	f, err := os.Open(path)
	if err != nil {
		results = append(results, verifyResult{
			name:    "Curriculum File Readable",
			passed:  false,
			message: err.Error(),
		})
		return nil, results
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		results = append(results, verifyResult{
			name:    "Curriculum File Parses",
			passed:  false,
			message: err.Error(),
		})
		return nil, results
	}
	if len(all) == 0 {
		results = append(results, verifyResult{
			name:    "Curriculum File Parses",
			passed:  false,
			message: "file is empty, header row expected",
		})
		return nil, results
	}

	header := all[0]
	rows := all[1:]
	results = append(results, verifyResult{
		name:    "Curriculum File Parses",
		passed:  true,
		message: fmt.Sprintf("%d curriculum rows", len(rows)),
	})

	wantHeader := []string{"program", "semester", "subject", "credits"}
	headerOK := len(header) == len(wantHeader)
	if headerOK {
		for i, col := range wantHeader {
			if header[i] != col {
				headerOK = false
				break
			}
		}
	}
	results = append(results, verifyResult{
		name:    "Curriculum Header",
		passed:  headerOK,
		message: fmt.Sprintf("got %v", header),
	})

	badSemesters := 0
	emptySubjects := 0
	for _, row := range rows {
		if len(row) != len(wantHeader) {
			continue
		}
		if sem, err := strconv.Atoi(row[1]); err != nil || sem < 1 {
			badSemesters++
		}
		if row[2] == "" {
			emptySubjects++
		}
	}
	results = append(results, verifyResult{
		name:    "Semester Values",
		passed:  badSemesters == 0,
		message: fmt.Sprintf("%d rows with a non-positive or unparseable semester", badSemesters),
	})
	results = append(results, verifyResult{
		name:    "Subject Names",
		passed:  emptySubjects == 0,
		message: fmt.Sprintf("%d rows with an empty subject", emptySubjects),
	})

	return rows, results
}

// verifyCrossReferences checks that the two artifacts describe the same
// catalog. The bot filters curriculum rows by the exact program name
// stored in the JSON file, so the names must match byte for byte.
func verifyCrossReferences(records []dataset.ProgramRecord, rows [][]string) []verifyResult {
	results := []verifyResult{}

	jsonNames := map[string]int{}
	jsonSubjects := 0
	for _, rec := range records {
		jsonNames[rec.ProgramName] = len(rec.Curriculum)
		jsonSubjects += len(rec.Curriculum)
	}

	orphans := map[string]bool{}
	csvCounts := map[string]int{}
	for _, row := range rows {
		if len(row) < 1 {
			continue
		}
		name := row[0]
		if _, ok := jsonNames[name]; !ok {
			orphans[name] = true
		}
		csvCounts[name]++
	}

	orphanList := make([]string, 0, len(orphans))
	for name := range orphans {
		orphanList = append(orphanList, name)
	}
	results = append(results, verifyResult{
		name:    "Curriculum Programs Known",
		passed:  len(orphanList) == 0,
		message: summarize("every row belongs to a cataloged program", "orphaned programs: %v", orphanList),
	})

	mismatched := []string{}
	for name, want := range jsonNames {
		if csvCounts[name] != want {
			mismatched = append(mismatched, fmt.Sprintf("%s (json %d, csv %d)", name, want, csvCounts[name]))
		}
	}
	results = append(results, verifyResult{
		name:    "Subject Counts Consistent",
		passed:  len(mismatched) == 0,
		message: summarize(fmt.Sprintf("%d subjects in both artifacts", jsonSubjects), "count drift: %v", mismatched),
	})

	return results
}

// summarize formats the pass message or the failure message with its
// offending values.
func summarize(okMsg, failFormat string, offenders []string) string {
	if len(offenders) == 0 {
		return okMsg
	}
	return fmt.Sprintf(failFormat, offenders)
}
