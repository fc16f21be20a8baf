package dialog

import (
	"context"
	"errors"
	"fmt"

	domerrors "github.com/abitbot/itmo-masters-bot/internal/errors"
	"github.com/abitbot/itmo-masters-bot/internal/intent"
	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
	"github.com/abitbot/itmo-masters-bot/internal/render"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
)

// ModuleName for logging
const ModuleName = "dialog"

// Keyboard tells the transport which reply keyboard to attach.
type Keyboard int

const (
	// KeyboardKeep leaves whatever keyboard the chat already shows.
	KeyboardKeep Keyboard = iota

	// KeyboardMain attaches the main menu keyboard.
	KeyboardMain

	// KeyboardPrograms attaches the program selection keyboard.
	KeyboardPrograms

	// KeyboardRemove removes the custom keyboard.
	KeyboardRemove
)

// Reply is one outbound message produced by the dialog machine.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Machine routes incoming text to a reply flow. Menu labels win over
// everything, a pending program selection wins over keyword detection,
// and keyword detection never changes state.
type Machine struct {
	store    storage.CatalogStore
	sessions *SessionStore
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewMachine wires the dialog machine.
func NewMachine(store storage.CatalogStore, sessions *SessionStore, m *metrics.Metrics, log *logger.Logger) *Machine {
	return &Machine{
		store:    store,
		sessions: sessions,
		metrics:  m,
		log:      log.WithModule(ModuleName),
	}
}

// Sessions exposes the session store, mainly for the ops endpoints.
func (m *Machine) Sessions() *SessionStore {
	return m.sessions
}

// Start resets the chat and greets the user with the main menu.
func (m *Machine) Start(ctx context.Context, chatID int64, firstName string) []Reply {
	m.sessions.Reset(chatID)
	m.log.WithChatID(chatID).Debug("Dialog started")
	return []Reply{{Text: render.Welcome(firstName), Keyboard: KeyboardMain}}
}

// Help replies with the command reference. State is untouched.
func (m *Machine) Help(ctx context.Context, chatID int64) []Reply {
	return []Reply{{Text: render.HelpText}}
}

// Programs replies with the full program list.
func (m *Machine) Programs(ctx context.Context, chatID int64) []Reply {
	return m.showProgramList(ctx)
}

// AskSubjects asks the user to pick a program for its curriculum.
func (m *Machine) AskSubjects(ctx context.Context, chatID int64) []Reply {
	return m.askProgram(chatID, PendingSubjects)
}

// AskCompetencies asks the user to pick a program for its competencies.
func (m *Machine) AskCompetencies(ctx context.Context, chatID int64) []Reply {
	return m.askProgram(chatID, PendingCompetencies)
}

// Duration replies with the study duration of every program.
func (m *Machine) Duration(ctx context.Context, chatID int64) []Reply {
	return m.showDurationList(ctx)
}

// Cancel ends the dialog and removes the custom keyboard.
func (m *Machine) Cancel(ctx context.Context, chatID int64) []Reply {
	m.sessions.Reset(chatID)
	m.log.WithChatID(chatID).Debug("Dialog cancelled")
	return []Reply{{Text: render.CancelText, Keyboard: KeyboardRemove}}
}

// HandleText processes a plain text message.
func (m *Machine) HandleText(ctx context.Context, chatID int64, text string) []Reply {
	if action, ok := intent.MatchMenuLabel(text); ok {
		m.log.WithChatID(chatID).Debugf("Menu label matched: %s", action)
		m.metrics.RecordIntent(action.String())
		return m.handleMenu(ctx, chatID, action)
	}

	if state := m.sessions.Get(chatID); state.AwaitingSelection() {
		return m.handleSelection(ctx, chatID, text, state.Pending)
	}

	return m.detectIntent(ctx, chatID, text)
}

func (m *Machine) handleMenu(ctx context.Context, chatID int64, action intent.Action) []Reply {
	switch action {
	case intent.ActionShowPrograms:
		return m.showProgramList(ctx)
	case intent.ActionAskSubjects:
		return m.askProgram(chatID, PendingSubjects)
	case intent.ActionAskCompetencies:
		return m.askProgram(chatID, PendingCompetencies)
	case intent.ActionShowInfo:
		return m.askProgram(chatID, PendingInfo)
	case intent.ActionShowDuration:
		return m.showDurationList(ctx)
	case intent.ActionHelp:
		return []Reply{{Text: render.HelpText}}
	case intent.ActionBack:
		m.sessions.Reset(chatID)
		return []Reply{{Text: render.MainMenuText, Keyboard: KeyboardMain}}
	default:
		return []Reply{{Text: render.FallbackReply}}
	}
}

// askProgram stores what the chosen program will be used for and shows
// the program keyboard.
func (m *Machine) askProgram(chatID int64, kind Pending) []Reply {
	m.sessions.Set(chatID, State{Pending: kind})
	m.log.WithChatID(chatID).Debugf("Awaiting program selection: %s", kind)
	return []Reply{{Text: selectionPrompt(kind), Keyboard: KeyboardPrograms}}
}

func selectionPrompt(kind Pending) string {
	switch kind {
	case PendingSubjects:
		return render.AskSubjectsPrompt
	case PendingCompetencies:
		return render.AskCompetenciesPrompt
	default:
		return render.AskInfoPrompt
	}
}

// handleSelection treats the text as a program choice.
//
// An unrecognized choice keeps the chat in the selection flow so the
// user can try again. A recognized one answers and returns the chat to
// the main menu, whatever the answer turns out to be.
func (m *Machine) handleSelection(ctx context.Context, chatID int64, text string, kind Pending) []Reply {
	log := m.log.WithChatID(chatID)

	program, err := m.resolveProgram(ctx, text)
	if errors.Is(err, domerrors.ErrProgramNotFound) {
		log.Debugf("Program selection not matched: %q", text)
		return []Reply{{Text: render.ProgramNotFoundPrompt}}
	}
	if err != nil {
		log.WithError(err).Error("Program selection lookup failed")
		return []Reply{{Text: render.ProgramsUnavailable}}
	}

	m.sessions.Reset(chatID)
	log.Debugf("Program selected: %s (%s)", program.Name, kind)

	switch kind {
	case PendingSubjects:
		return m.showSubjects(ctx, program)
	case PendingCompetencies:
		return []Reply{{Text: render.Competencies(program)}}
	default:
		return []Reply{{Text: render.InfoCard(program)}}
	}
}

// resolveProgram looks up a program by the text the user sent.
func (m *Machine) resolveProgram(ctx context.Context, text string) (*storage.Program, error) {
	program, err := m.store.FindProgram(ctx, text)
	if err != nil {
		m.metrics.RecordProgramLookup("error")
		return nil, fmt.Errorf("find program: %w", err)
	}
	if program == nil {
		m.metrics.RecordProgramLookup("miss")
		return nil, fmt.Errorf("%w: %s", domerrors.ErrProgramNotFound, text)
	}
	m.metrics.RecordProgramLookup("hit")
	return program, nil
}

// showSubjects replies with the curriculum of a program, chunked when
// the listing exceeds the message size limit.
func (m *Machine) showSubjects(ctx context.Context, program *storage.Program) []Reply {
	rows, err := m.store.CurriculumForProgram(ctx, program.Name)
	if err != nil {
		m.log.WithError(err).Errorf("Failed to load curriculum for %s", program.Name)
		rows = nil
	}

	parts := render.Subjects(program.Name, rows)
	if len(parts) > 1 {
		m.metrics.RecordChunks(len(parts))
	}

	replies := make([]Reply, 0, len(parts))
	for _, part := range parts {
		replies = append(replies, Reply{Text: part})
	}
	return replies
}

// detectIntent answers free text by keyword detection. No branch here
// changes dialog state; the subject and competency hints point the user
// at the menu instead of opening a selection.
func (m *Machine) detectIntent(ctx context.Context, chatID int64, text string) []Reply {
	action := intent.Classify(text)
	m.metrics.RecordIntent(action.String())
	m.log.WithChatID(chatID).Debugf("Detected intent: %s", action)

	switch action {
	case intent.ActionGreeting:
		return []Reply{{Text: render.GreetingReply}}
	case intent.ActionShowPrograms:
		return m.showProgramsOverview(ctx)
	case intent.ActionAskSubjects:
		return []Reply{{Text: render.SubjectsHint}}
	case intent.ActionAskCompetencies:
		return []Reply{{Text: render.CompetenciesHint}}
	case intent.ActionShowDuration:
		return m.showDurationOverview(ctx)
	default:
		return []Reply{{Text: render.FallbackReply}}
	}
}

func (m *Machine) showProgramList(ctx context.Context) []Reply {
	return []Reply{{Text: render.ProgramList(m.listPrograms(ctx))}}
}

func (m *Machine) showProgramsOverview(ctx context.Context) []Reply {
	return []Reply{{Text: render.ProgramsOverview(m.listPrograms(ctx))}}
}

func (m *Machine) showDurationList(ctx context.Context) []Reply {
	return []Reply{{Text: render.DurationList(m.listPrograms(ctx))}}
}

func (m *Machine) showDurationOverview(ctx context.Context) []Reply {
	return []Reply{{Text: render.DurationOverview(m.listPrograms(ctx))}}
}

// listPrograms degrades to an empty list on storage errors so the
// formatters fall back to their unavailability texts.
func (m *Machine) listPrograms(ctx context.Context) []storage.Program {
	programs, err := m.store.ListPrograms(ctx)
	if err != nil {
		m.log.WithError(err).Error("Failed to load program list")
		return nil
	}
	return programs
}
