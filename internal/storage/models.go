package storage

// Program represents a master's program record from the catalog
type Program struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Code            string   `json:"code,omitempty"`
	Duration        string   `json:"duration,omitempty"`
	Description     string   `json:"description,omitempty"`
	URL             string   `json:"url,omitempty"`
	CurriculumCount int      `json:"curriculum_count"`
	Competencies    []string `json:"competencies,omitempty"`
	LoadedAt        int64    `json:"loaded_at"`
}

// CurriculumRow represents a single curriculum entry (one subject in one semester)
type CurriculumRow struct {
	Program  string `json:"program"`
	Semester int    `json:"semester"`
	Subject  string `json:"subject"`
	Credits  string `json:"credits"`
	LoadedAt int64  `json:"loaded_at"`
}
