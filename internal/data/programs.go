// Package data provides static data definitions for the application.
// These data are maintained manually and updated periodically.
package data

// ProgramSource describes one master's program page on the admission
// site. Name and Code come from here, not from the page, so the catalog
// stays stable even when the site reworks its markup.
type ProgramSource struct {
	Name string // catalog program name, matched by curriculum rows
	Code string // degree code shown on the info card
	URL  string // program page on the admission site
}

// AbitBaseURL is the base URL for admission program pages.
const AbitBaseURL = "https://abit.itmo.ru"

// MasterPrograms lists the AI master's programs served by the bot.
// Source: https://abit.itmo.ru/programs/master
var MasterPrograms = []ProgramSource{
	{
		Name: "Искусственный интеллект",
		Code: "01.04.02",
		URL:  AbitBaseURL + "/program/master/ai",
	},
	{
		Name: "Управление ИИ-продуктами",
		Code: "38.04.05",
		URL:  AbitBaseURL + "/program/master/ai_product",
	},
}

// programURLMap is a lookup map for O(1) URL retrieval.
// Initialized lazily on first GetProgramURL call.
var programURLMap map[string]string

// GetProgramURL returns the admission page URL for a program name.
// Returns empty string if program not found in the static list.
func GetProgramURL(name string) string {
	if programURLMap == nil {
		programURLMap = make(map[string]string, len(MasterPrograms))
		for _, p := range MasterPrograms {
			programURLMap[p.Name] = p.URL
		}
	}
	return programURLMap[name]
}

// GetProgramCount returns the total number of programs in the static list.
func GetProgramCount() int {
	return len(MasterPrograms)
}
