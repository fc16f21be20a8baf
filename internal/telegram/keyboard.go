package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abitbot/itmo-masters-bot/internal/dialog"
	"github.com/abitbot/itmo-masters-bot/internal/render"
)

// replyMarkup resolves a keyboard directive. Nil means the chat keeps
// whatever keyboard it currently shows.
func (b *Bot) replyMarkup(ctx context.Context, kb dialog.Keyboard) interface{} {
	switch kb {
	case dialog.KeyboardMain:
		return mainKeyboard()
	case dialog.KeyboardPrograms:
		return b.programKeyboard(ctx)
	case dialog.KeyboardRemove:
		return tgbotapi.NewRemoveKeyboard(false)
	default:
		return nil
	}
}

// mainKeyboard builds the static main menu.
func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(render.ButtonPrograms),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(render.ButtonSubjects),
			tgbotapi.NewKeyboardButton(render.ButtonCompetencies),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(render.ButtonDuration),
			tgbotapi.NewKeyboardButton(render.ButtonInfo),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(render.ButtonHelp),
		),
	)
}

// programKeyboard lists catalog programs two per row plus a back row.
// Storage failures degrade to the bare back row so the prompt still
// renders.
func (b *Bot) programKeyboard(ctx context.Context) tgbotapi.ReplyKeyboardMarkup {
	programs, err := b.programs.ListPrograms(ctx)
	if err != nil {
		b.log.WithError(err).Error("Failed to load programs for keyboard")
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(programs)/2+1)
	for i := 0; i < len(programs); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(programs[i].Name)}
		if i+1 < len(programs) {
			row = append(row, tgbotapi.NewKeyboardButton(programs[i+1].Name))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(render.ButtonBack),
	))

	return tgbotapi.NewReplyKeyboard(rows...)
}
