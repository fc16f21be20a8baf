// Package dataset reads and writes the program catalog source files.
// The catalog ships as two artifacts produced by the ingest command: a
// JSON array of program records and a CSV of curriculum rows. The bot
// loads both into storage at startup, the info card counts come from
// the JSON curriculum while the subjects listing reads the CSV rows.
package dataset

// ProgramRecord mirrors one element of the programs JSON file.
type ProgramRecord struct {
	ProgramName  string            `json:"program_name"`
	ProgramCode  string            `json:"program_code,omitempty"`
	Duration     string            `json:"duration,omitempty"`
	Description  string            `json:"description,omitempty"`
	URL          string            `json:"url,omitempty"`
	Curriculum   []CurriculumEntry `json:"curriculum"`
	Competencies []string          `json:"competencies"`
}

// CurriculumEntry is one subject inside a program's JSON curriculum.
type CurriculumEntry struct {
	Semester int    `json:"semester"`
	Subject  string `json:"subject"`
	Credits  string `json:"credits"`
}

// curriculumColumns is the CSV header, in writing order.
var curriculumColumns = []string{"program", "semester", "subject", "credits"}
