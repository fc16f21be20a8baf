package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/abitbot/itmo-masters-bot/internal/dataset"
	"github.com/abitbot/itmo-masters-bot/internal/sliceutil"
	"github.com/abitbot/itmo-masters-bot/internal/stringutil"
)

// PageData holds the program details extracted from one admission page.
type PageData struct {
	Title        string
	Duration     string
	Description  string
	Competencies []string
	Curriculum   []dataset.CurriculumEntry
}

// nextData mirrors the slice of the page bootstrap JSON we care about.
// The admission site is a Next.js app; the rendered HTML carries the
// full program payload in a script tag instead of in the markup.
type nextData struct {
	Props struct {
		PageProps struct {
			Program struct {
				Title        string       `json:"title"`
				Duration     string       `json:"educationDuration"`
				About        string       `json:"about"`
				Competencies []string     `json:"competencies"`
				Disciplines  []discipline `json:"disciplines"`
			} `json:"program"`
		} `json:"pageProps"`
	} `json:"props"`
}

type discipline struct {
	Semester int        `json:"semester"`
	Name     string     `json:"name"`
	Credits  flexString `json:"credits"`
}

// flexString accepts a JSON string or number. Credit values show up
// both ways depending on the page build.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ParseProgramPage extracts program details from an admission page.
func ParseProgramPage(doc *goquery.Document) (*PageData, error) {
	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, fmt.Errorf("bootstrap script __NEXT_DATA__ not found")
	}

	var payload nextData
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode bootstrap JSON: %w", err)
	}

	prog := payload.Props.PageProps.Program
	if strings.TrimSpace(prog.Title) == "" {
		return nil, fmt.Errorf("program payload is empty")
	}

	page := &PageData{
		Title:       strings.TrimSpace(prog.Title),
		Duration:    strings.TrimSpace(prog.Duration),
		Description: strings.TrimSpace(prog.About),
	}

	for _, c := range prog.Competencies {
		c = stringutil.NormalizeSpace(c)
		if c == "" {
			continue
		}
		page.Competencies = append(page.Competencies, c)
	}
	// Some page builds repeat competencies across payload sections.
	page.Competencies = sliceutil.Deduplicate(page.Competencies, func(s string) string { return s })

	for _, d := range prog.Disciplines {
		subject := stringutil.NormalizeSpace(d.Name)
		if subject == "" {
			continue
		}
		semester := d.Semester
		if semester < 1 {
			// entries without a semester land in the first one
			semester = 1
		}
		page.Curriculum = append(page.Curriculum, dataset.CurriculumEntry{
			Semester: semester,
			Subject:  subject,
			Credits:  strings.TrimSpace(string(d.Credits)),
		})
	}

	return page, nil
}
