// Package intent maps user text to dialog actions using a Pattern-Action
// Table: menu labels match exactly (after lowercasing), free text runs
// through an ordered keyword rule list where the first rule containing any
// of its keywords wins. Keyword sets overlap, so rule order is the
// tie-break policy.
package intent

import (
	"strings"

	"github.com/abitbot/itmo-masters-bot/internal/stringutil"
)

// Action identifies what the user asked for.
type Action int

const (
	ActionUnknown Action = iota
	ActionGreeting
	ActionShowPrograms
	ActionAskSubjects
	ActionAskCompetencies
	ActionShowDuration
	ActionShowInfo
	ActionHelp
	ActionBack
)

// String returns the action name used as a metrics label.
func (a Action) String() string {
	switch a {
	case ActionGreeting:
		return "greeting"
	case ActionShowPrograms:
		return "show_programs"
	case ActionAskSubjects:
		return "ask_subjects"
	case ActionAskCompetencies:
		return "ask_competencies"
	case ActionShowDuration:
		return "show_duration"
	case ActionShowInfo:
		return "show_info"
	case ActionHelp:
		return "help"
	case ActionBack:
		return "back"
	default:
		return "unknown"
	}
}

// Menu button labels as rendered on the reply keyboards. Incoming text is
// lowercased before comparison, so the constants are stored lowercased.
const (
	labelPrograms     = "📚 список программ"
	labelSubjects     = "📖 предметы программы"
	labelCompetencies = "🎯 компетенции"
	labelDuration     = "⏱️ продолжительность"
	labelInfo         = "ℹ️ о программе"
	labelHelp         = "❓ помощь"
	labelBack         = "🔙 назад"
)

// menuLabels maps lowercased button text to its action.
var menuLabels = map[string]Action{
	labelPrograms:     ActionShowPrograms,
	labelSubjects:     ActionAskSubjects,
	labelCompetencies: ActionAskCompetencies,
	labelDuration:     ActionShowDuration,
	labelInfo:         ActionShowInfo,
	labelHelp:         ActionHelp,
	labelBack:         ActionBack,
}

// Keyword definitions for free-text detection. Stems cover inflected
// Russian forms ("программы", "программой", ...).
var (
	greetingKeywords   = []string{"привет", "здравств", "hello", "hi"}
	programKeywords    = []string{"программ", "program"}
	subjectKeywords    = []string{"предмет", "дисциплин", "курс"}
	competencyKeywords = []string{"компетенц", "навык", "умение"}
	durationKeywords   = []string{"длительн", "продолжительн", "срок"}
)

type rule struct {
	action   Action
	keywords []string
}

// rules is the ordered rule table shared by every Classify call.
// First match wins.
var rules = []rule{
	{ActionGreeting, greetingKeywords},
	{ActionShowPrograms, programKeywords},
	{ActionAskSubjects, subjectKeywords},
	{ActionAskCompetencies, competencyKeywords},
	{ActionShowDuration, durationKeywords},
}

// MatchMenuLabel reports whether the text is one of the reply keyboard
// buttons and returns its action.
func MatchMenuLabel(text string) (Action, bool) {
	action, ok := menuLabels[stringutil.Fold(text)]
	return action, ok
}

// Classify maps free text to an action. Every input maps to exactly one
// action; text matching no rule yields ActionUnknown.
func Classify(text string) Action {
	lowered := stringutil.Fold(text)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(lowered, keyword) {
				return r.action
			}
		}
	}
	return ActionUnknown
}
