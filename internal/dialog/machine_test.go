package dialog

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
	"github.com/abitbot/itmo-masters-bot/internal/render"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
)

const testChatID int64 = 51

func testCatalogPrograms() []*storage.Program {
	return []*storage.Program{
		{
			Name:            "Искусственный интеллект",
			Code:            "01.04.02",
			Duration:        "2 года",
			Description:     "Подготовка инженеров машинного обучения",
			URL:             "https://abit.itmo.ru/program/master/ai",
			CurriculumCount: 3,
			Competencies: []string{
				"Разработка ML-моделей",
				"Анализ данных",
			},
		},
		{
			Name:            "AI Product Management",
			Code:            "38.04.05",
			CurriculumCount: 1,
		},
	}
}

func testCatalogCurriculum() []*storage.CurriculumRow {
	return []*storage.CurriculumRow{
		{Program: "Искусственный интеллект", Semester: 2, Subject: "Глубокое обучение", Credits: "6"},
		{Program: "Искусственный интеллект", Semester: 1, Subject: "Математическая статистика", Credits: "4"},
		{Program: "Искусственный интеллект", Semester: 1, Subject: "Программирование на Python", Credits: "5"},
		{Program: "AI Product Management", Semester: 1, Subject: "Управление продуктом", Credits: "4"},
	}
}

// setupMachine creates a machine over an in-memory catalog.
func setupMachine(t *testing.T) (*Machine, *storage.DB) {
	t.Helper()

	machine, db := setupEmptyMachine(t)

	ctx := context.Background()
	if err := db.ReplaceAllPrograms(ctx, testCatalogPrograms()); err != nil {
		t.Fatalf("Failed to seed programs: %v", err)
	}
	if err := db.ReplaceAllCurriculum(ctx, testCatalogCurriculum()); err != nil {
		t.Fatalf("Failed to seed curriculum: %v", err)
	}
	return machine, db
}

// setupEmptyMachine creates a machine with no catalog rows at all.
func setupEmptyMachine(t *testing.T) (*Machine, *storage.DB) {
	t.Helper()

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New(prometheus.NewRegistry())
	log := logger.New("error")
	return NewMachine(db, NewSessionStore(m), m, log), db
}

func singleReply(t *testing.T, replies []Reply) Reply {
	t.Helper()
	if len(replies) != 1 {
		t.Fatalf("Expected a single reply, got %d", len(replies))
	}
	return replies[0]
}

func TestStart_GreetsWithMainMenu(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	reply := singleReply(t, machine.Start(ctx, testChatID, "Анна"))

	if !strings.Contains(reply.Text, "Привет, Анна!") {
		t.Errorf("Welcome text missing greeting: %q", reply.Text)
	}
	if reply.Keyboard != KeyboardMain {
		t.Errorf("Expected main menu keyboard, got %v", reply.Keyboard)
	}
}

func TestStart_ResetsSelection(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.AskSubjects(ctx, testChatID)
	machine.Start(ctx, testChatID, "Анна")

	if machine.Sessions().Get(testChatID).AwaitingSelection() {
		t.Error("Start should return the chat to the main menu")
	}
}

func TestHelp_RepliesWithCommandReference(t *testing.T) {
	machine, _ := setupMachine(t)

	reply := singleReply(t, machine.Help(context.Background(), testChatID))

	if reply.Text != render.HelpText {
		t.Errorf("Unexpected help text: %q", reply.Text)
	}
	if reply.Keyboard != KeyboardKeep {
		t.Errorf("Help should not touch the keyboard, got %v", reply.Keyboard)
	}
}

func TestPrograms_ListsCodeAndDuration(t *testing.T) {
	machine, _ := setupMachine(t)

	reply := singleReply(t, machine.Programs(context.Background(), testChatID))

	for _, want := range []string{
		"Искусственный интеллект",
		"Код: 01.04.02",
		"Длительность: 2 года",
		"AI Product Management",
	} {
		if !strings.Contains(reply.Text, want) {
			t.Errorf("Program list missing %q:\n%s", want, reply.Text)
		}
	}
}

func TestPrograms_EmptyCatalog(t *testing.T) {
	machine, _ := setupEmptyMachine(t)

	reply := singleReply(t, machine.Programs(context.Background(), testChatID))

	if reply.Text != render.ProgramsUnavailable {
		t.Errorf("Expected unavailability text, got %q", reply.Text)
	}
}

func TestDuration_UsesDefaultWhenMissing(t *testing.T) {
	machine, _ := setupMachine(t)

	reply := singleReply(t, machine.Duration(context.Background(), testChatID))

	if !strings.Contains(reply.Text, "Искусственный интеллект: 2 года") {
		t.Errorf("Duration list missing stored value:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "AI Product Management: 2 года") {
		t.Errorf("Duration list missing default value:\n%s", reply.Text)
	}
}

func TestCancel_RemovesKeyboardAndResets(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.AskCompetencies(ctx, testChatID)
	reply := singleReply(t, machine.Cancel(ctx, testChatID))

	if reply.Text != render.CancelText {
		t.Errorf("Unexpected cancel text: %q", reply.Text)
	}
	if reply.Keyboard != KeyboardRemove {
		t.Errorf("Cancel should remove the keyboard, got %v", reply.Keyboard)
	}
	if machine.Sessions().Get(testChatID).AwaitingSelection() {
		t.Error("Cancel should return the chat to the main menu")
	}
}

func TestHandleText_MenuLabelStartsSelection(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	reply := singleReply(t, machine.HandleText(ctx, testChatID, "📖 Предметы программы"))

	if reply.Text != render.AskSubjectsPrompt {
		t.Errorf("Unexpected prompt: %q", reply.Text)
	}
	if reply.Keyboard != KeyboardPrograms {
		t.Errorf("Expected program keyboard, got %v", reply.Keyboard)
	}
	if got := machine.Sessions().Get(testChatID).Pending; got != PendingSubjects {
		t.Errorf("Expected pending subjects, got %v", got)
	}
}

func TestHandleText_SelectionAnswersSubjects(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.HandleText(ctx, testChatID, "📖 Предметы программы")
	reply := singleReply(t, machine.HandleText(ctx, testChatID, "Искусственный интеллект"))

	if !strings.Contains(reply.Text, "📖 Предметы программы 'Искусственный интеллект':") {
		t.Errorf("Subjects header missing:\n%s", reply.Text)
	}
	semester1 := strings.Index(reply.Text, "Семестр 1")
	semester2 := strings.Index(reply.Text, "Семестр 2")
	if semester1 < 0 || semester2 < 0 || semester1 > semester2 {
		t.Errorf("Semesters missing or out of order:\n%s", reply.Text)
	}
	if machine.Sessions().Get(testChatID).AwaitingSelection() {
		t.Error("Successful selection should return the chat to the main menu")
	}
}

func TestHandleText_SelectionCaseInsensitive(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.HandleText(ctx, testChatID, "ℹ️ О программе")
	reply := singleReply(t, machine.HandleText(ctx, testChatID, "иСКУССТВЕННЫЙ ИНТЕЛЛЕКТ"))

	if !strings.Contains(reply.Text, "📚 Программа: Искусственный интеллект") {
		t.Errorf("Info card missing program name:\n%s", reply.Text)
	}
}

func TestHandleText_SelectionBySubstring(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.HandleText(ctx, testChatID, "🎯 Компетенции")
	reply := singleReply(t, machine.HandleText(ctx, testChatID, "product"))

	if !strings.Contains(reply.Text, "🎯 Компетенции программы 'AI Product Management':") {
		t.Errorf("Competencies header missing:\n%s", reply.Text)
	}
}

func TestHandleText_SelectionCompetenciesNumbered(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.HandleText(ctx, testChatID, "🎯 Компетенции")
	reply := singleReply(t, machine.HandleText(ctx, testChatID, "Искусственный интеллект"))

	if !strings.Contains(reply.Text, "1. Разработка ML-моделей") {
		t.Errorf("First competency missing:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "2. Анализ данных") {
		t.Errorf("Second competency missing:\n%s", reply.Text)
	}
}

func TestHandleText_UnknownProgramKeepsSelection(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.HandleText(ctx, testChatID, "📖 Предметы программы")
	reply := singleReply(t, machine.HandleText(ctx, testChatID, "Квантовая физика"))

	if reply.Text != render.ProgramNotFoundPrompt {
		t.Errorf("Expected retry prompt, got %q", reply.Text)
	}
	if got := machine.Sessions().Get(testChatID).Pending; got != PendingSubjects {
		t.Errorf("Unknown choice should keep the selection flow, got %v", got)
	}

	// A correct choice afterwards still works.
	reply = machine.HandleText(ctx, testChatID, "Искусственный интеллект")[0]
	if !strings.Contains(reply.Text, "📖 Предметы программы") {
		t.Errorf("Retry after miss failed:\n%s", reply.Text)
	}
}

func TestHandleText_MenuLabelWinsOverSelection(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.HandleText(ctx, testChatID, "📖 Предметы программы")
	reply := singleReply(t, machine.HandleText(ctx, testChatID, "🔙 Назад"))

	if reply.Text != render.MainMenuText {
		t.Errorf("Expected main menu text, got %q", reply.Text)
	}
	if reply.Keyboard != KeyboardMain {
		t.Errorf("Expected main menu keyboard, got %v", reply.Keyboard)
	}
	if machine.Sessions().Get(testChatID).AwaitingSelection() {
		t.Error("Back should leave the selection flow")
	}
}

func TestHandleText_UnknownPendingShowsInfoCard(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	machine.Sessions().Set(testChatID, State{Pending: Pending(99)})
	reply := singleReply(t, machine.HandleText(ctx, testChatID, "Искусственный интеллект"))

	if !strings.Contains(reply.Text, "📚 Программа: Искусственный интеллект") {
		t.Errorf("Expected info card fallback:\n%s", reply.Text)
	}
}

func TestHandleText_FreeTextHintsKeepMainMenu(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	cases := []struct {
		text string
		want string
	}{
		{"какие предметы изучают?", render.SubjectsHint},
		{"расскажи про навыки", render.CompetenciesHint},
	}
	for _, tc := range cases {
		reply := singleReply(t, machine.HandleText(ctx, testChatID, tc.text))
		if reply.Text != tc.want {
			t.Errorf("HandleText(%q) = %q, want %q", tc.text, reply.Text, tc.want)
		}
		if machine.Sessions().Get(testChatID).AwaitingSelection() {
			t.Errorf("HandleText(%q) should not open a selection", tc.text)
		}
	}
}

func TestHandleText_GreetingAndFallback(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	reply := singleReply(t, machine.HandleText(ctx, testChatID, "Привет!"))
	if reply.Text != render.GreetingReply {
		t.Errorf("Expected greeting, got %q", reply.Text)
	}

	reply = singleReply(t, machine.HandleText(ctx, testChatID, "Погода в Петербурге"))
	if reply.Text != render.FallbackReply {
		t.Errorf("Expected fallback, got %q", reply.Text)
	}
}

func TestHandleText_ProgramsOverview(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	reply := singleReply(t, machine.HandleText(ctx, testChatID, "какие есть программы?"))

	if !strings.Contains(reply.Text, "🎓 Доступные программы:") {
		t.Errorf("Overview header missing:\n%s", reply.Text)
	}
	if strings.Contains(reply.Text, "Код:") {
		t.Errorf("Overview should not include codes:\n%s", reply.Text)
	}
}

func TestHandleText_DurationOverview(t *testing.T) {
	machine, _ := setupMachine(t)
	ctx := context.Background()

	reply := singleReply(t, machine.HandleText(ctx, testChatID, "какой срок обучения?"))

	if !strings.Contains(reply.Text, "⏱️ Продолжительность:") {
		t.Errorf("Overview header missing:\n%s", reply.Text)
	}
}

func TestHandleText_LongCurriculumChunks(t *testing.T) {
	machine, db := setupMachine(t)
	ctx := context.Background()

	rows := make([]*storage.CurriculumRow, 0, 400)
	for i := 0; i < 400; i++ {
		rows = append(rows, &storage.CurriculumRow{
			Program:  "Искусственный интеллект",
			Semester: i%4 + 1,
			Subject:  strings.Repeat("Прикладное машинное обучение ", 3),
			Credits:  "3",
		})
	}
	if err := db.ReplaceAllCurriculum(ctx, rows); err != nil {
		t.Fatalf("Failed to seed long curriculum: %v", err)
	}

	machine.HandleText(ctx, testChatID, "📖 Предметы программы")
	replies := machine.HandleText(ctx, testChatID, "Искусственный интеллект")

	if len(replies) < 2 {
		t.Fatalf("Expected chunked replies, got %d", len(replies))
	}
	for i, reply := range replies {
		if n := len([]rune(reply.Text)); n > render.MaxMessageRunes {
			t.Errorf("Chunk %d has %d runes, limit is %d", i, n, render.MaxMessageRunes)
		}
	}
}
