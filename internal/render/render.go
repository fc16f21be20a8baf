// Package render builds the bot's user-facing texts. All Russian copy
// lives here so handlers stay free of literals. Formatters never fail on
// empty data, each defines an explicit unavailability message instead.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abitbot/itmo-masters-bot/internal/storage"
)

// Static dialog texts.
const (
	GreetingReply = "👋 Привет! Чем могу помочь?"

	MainMenuText = "Главное меню:"

	CancelText = "Диалог завершен. Используйте /start для начала нового диалога."

	AskSubjectsPrompt     = "Выберите программу для просмотра предметов:"
	AskCompetenciesPrompt = "Выберите программу для просмотра компетенций:"
	AskInfoPrompt         = "Выберите программу для подробной информации:"

	ProgramNotFoundPrompt = "Программа не найдена. Выберите из списка:"

	SubjectsHint     = "Выберите программу для просмотра предметов из меню 📖"
	CompetenciesHint = "Выберите программу для просмотра компетенций из меню 🎯"

	FallbackReply = "Не совсем понял ваш вопрос. Используйте кнопки меню или напишите /help для справки."

	ProgramsUnavailable     = "Информация о программах временно недоступна."
	ProgramListUnavailable  = "Информация о программах недоступна."
	DurationListUnavailable = "Информация о программах недоступна."
	OverviewUnavailable     = "Информация недоступна."
	CompetenciesNotFound    = "Компетенции не найдены."
)

// Main menu button labels. The intent package matches these after
// lowercasing, so the display casing here is free to differ.
const (
	ButtonPrograms     = "📚 Список программ"
	ButtonSubjects     = "📖 Предметы программы"
	ButtonCompetencies = "🎯 Компетенции"
	ButtonDuration     = "⏱️ Продолжительность"
	ButtonInfo         = "ℹ️ О программе"
	ButtonHelp         = "❓ Помощь"
	ButtonBack         = "🔙 Назад"
)

// Field defaults for optional program metadata.
const (
	defaultCode        = "N/A"
	defaultDuration    = "Не указана"
	defaultDescription = "Описание отсутствует"
	fallbackDuration   = "2 года"
)

// HelpText lists the registered commands.
const HelpText = `📋 Доступные команды:

/start - Начать диалог
/help - Помощь
/programs - Список программ
/subjects - Предметы программы
/competencies - Компетенции
/duration - Продолжительность обучения

Или используйте кнопки меню 👇`

// Welcome greets a user by first name and introduces the bot.
func Welcome(firstName string) string {
	return fmt.Sprintf(`👋 Привет, %s!

🤖 Я бот-консультант по магистерским программам ИТМО в области искусственного интеллекта.

📊 Я могу рассказать о:
• Доступных программах
• Учебных планах и предметах
• Компетенциях выпускников
• Продолжительности обучения

Выберите опцию из меню ниже 👇`, firstName)
}

// ProgramList renders the detailed catalog listing with codes and durations.
func ProgramList(programs []storage.Program) string {
	if len(programs) == 0 {
		return ProgramsUnavailable
	}

	var b strings.Builder
	b.WriteString("🎓 Доступные магистерские программы:\n\n")
	for _, p := range programs {
		b.WriteString(fmt.Sprintf("• %s\n", p.Name))
		b.WriteString(fmt.Sprintf("  Код: %s\n", orDefault(p.Code, defaultCode)))
		b.WriteString(fmt.Sprintf("  Длительность: %s\n\n", orDefault(p.Duration, defaultDuration)))
	}
	return b.String()
}

// ProgramsOverview renders the short name-only listing used for free-text
// catalog questions.
func ProgramsOverview(programs []storage.Program) string {
	if len(programs) == 0 {
		return ProgramListUnavailable
	}

	var b strings.Builder
	b.WriteString("🎓 Доступные программы:\n\n")
	for _, p := range programs {
		b.WriteString(fmt.Sprintf("• %s\n", p.Name))
	}
	b.WriteString("\nВыберите программу из меню для подробной информации.")
	return b.String()
}

// InfoCard renders the full program card with description and counts.
func InfoCard(p *storage.Program) string {
	return fmt.Sprintf(`📚 Программа: %s
🔢 Код: %s
⏱️ Продолжительность: %s

📝 Описание:
%s

📊 Статистика:
• Дисциплин: %d
• Компетенций: %d`,
		p.Name,
		orDefault(p.Code, defaultCode),
		orDefault(p.Duration, defaultDuration),
		orDefault(p.Description, defaultDescription),
		p.CurriculumCount,
		len(p.Competencies))
}

// Subjects renders the curriculum listing for a program grouped by
// semester and returns it pre-chunked for delivery. Semester groups sort
// numerically ascending, rows keep their input order within a group.
func Subjects(programName string, rows []storage.CurriculumRow) []string {
	if len(rows) == 0 {
		return []string{fmt.Sprintf("Предметы для программы '%s' не найдены.", programName)}
	}

	groups := make(map[int][]storage.CurriculumRow)
	semesters := make([]int, 0)
	for _, row := range rows {
		if _, seen := groups[row.Semester]; !seen {
			semesters = append(semesters, row.Semester)
		}
		groups[row.Semester] = append(groups[row.Semester], row)
	}
	sort.Ints(semesters)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📖 Предметы программы '%s':\n\n", programName))
	for _, semester := range semesters {
		b.WriteString(fmt.Sprintf("🎓 Семестр %d:\n", semester))
		for _, row := range groups[semester] {
			b.WriteString(fmt.Sprintf("   • %s (%s кредитов)\n", row.Subject, row.Credits))
		}
		b.WriteString("\n")
	}

	return Chunk(b.String())
}

// Competencies renders the numbered competency list of a program.
func Competencies(p *storage.Program) string {
	if len(p.Competencies) == 0 {
		return CompetenciesNotFound
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 Компетенции программы '%s':\n\n", p.Name))
	for i, comp := range p.Competencies {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, comp))
	}
	return b.String()
}

// DurationList renders the study duration listing used by the menu and
// the /duration command.
func DurationList(programs []storage.Program) string {
	if len(programs) == 0 {
		return DurationListUnavailable
	}

	var b strings.Builder
	b.WriteString("⏱️ Продолжительность обучения:\n\n")
	for _, p := range programs {
		b.WriteString(fmt.Sprintf("• %s: %s\n", p.Name, orDefault(p.Duration, fallbackDuration)))
	}
	return b.String()
}

// DurationOverview renders the shorter duration listing used for
// free-text duration questions.
func DurationOverview(programs []storage.Program) string {
	if len(programs) == 0 {
		return OverviewUnavailable
	}

	var b strings.Builder
	b.WriteString("⏱️ Продолжительность:\n\n")
	for _, p := range programs {
		b.WriteString(fmt.Sprintf("• %s: %s\n", p.Name, orDefault(p.Duration, fallbackDuration)))
	}
	return b.String()
}

// orDefault substitutes a default for empty optional fields.
func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
