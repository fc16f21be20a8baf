// Package telegram binds the dialog machine to the Telegram Bot API.
// It long-polls for updates, maps commands and text to dialog entry
// points and delivers the replies with their keyboard markup.
package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abitbot/itmo-masters-bot/internal/config"
	"github.com/abitbot/itmo-masters-bot/internal/ctxutil"
	"github.com/abitbot/itmo-masters-bot/internal/dialog"
	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
	"github.com/abitbot/itmo-masters-bot/internal/sentry"
	"github.com/abitbot/itmo-masters-bot/internal/storage"
)

// ModuleName for logging
const ModuleName = "telegram"

// Bot drives the long-poll loop and owns the outgoing message path.
type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	machine     *dialog.Machine
	programs    storage.ProgramStore
	metrics     *metrics.Metrics
	log         *logger.Logger
	pollTimeout int
	wg          sync.WaitGroup
}

// Config holds the dependencies for creating a Bot.
type Config struct {
	Token       string
	Debug       bool
	PollTimeout int // Long-poll timeout in seconds, defaults to config.PollTimeoutSeconds
	Machine     *dialog.Machine
	Programs    storage.ProgramStore
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// New creates the Telegram transport and authorizes against the Bot API.
func New(cfg Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot API client: %w", err)
	}
	api.Debug = cfg.Debug

	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = config.PollTimeoutSeconds
	}

	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		machine:     cfg.Machine,
		programs:    cfg.Programs,
		metrics:     cfg.Metrics,
		log:         cfg.Logger.WithModule(ModuleName),
		pollTimeout: pollTimeout,
	}, nil
}

// Run starts long polling and blocks until ctx is cancelled or the
// update channel closes. In-flight updates keep processing after Run
// returns; call Shutdown to wait for them.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.registerCommands(); err != nil {
		b.log.WithError(err).Warn("Failed to register bot commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.log.Infof("Bot started as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// registerCommands publishes the command list shown in the Telegram UI.
func (b *Bot) registerCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Начать диалог"},
		tgbotapi.BotCommand{Command: "help", Description: "Справка по командам"},
		tgbotapi.BotCommand{Command: "programs", Description: "Список программ"},
		tgbotapi.BotCommand{Command: "subjects", Description: "Предметы программы"},
		tgbotapi.BotCommand{Command: "competencies", Description: "Компетенции программы"},
		tgbotapi.BotCommand{Command: "duration", Description: "Продолжительность обучения"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Завершить диалог"},
	)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	return nil
}

// dispatch filters an update and hands it to a worker goroutine.
// Only plain text and commands are routed; edits, stickers and media
// carry no text and are dropped here.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	ctx = ctxutil.WithUpdateID(ctx, update.UpdateID)
	ctx = ctxutil.WithChatID(ctx, msg.Chat.ID)
	if msg.From != nil {
		ctx = ctxutil.WithUserID(ctx, msg.From.ID)
	}

	// Detach from the poll loop so shutdown does not cut replies mid-send.
	procCtx := ctxutil.PreserveTracing(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.log.WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Error("Panic in update processing")
				sentry.CaptureExceptionWithContext(procCtx, fmt.Errorf("panic in update processing: %v", r))
			}
		}()
		b.processUpdate(procCtx, update)
	}()
}

// processUpdate routes one update through the dialog machine and sends
// the replies.
func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, config.UpdateProcessing)
	defer cancel()

	log := b.log.WithChatID(msg.Chat.ID).WithField("update_id", update.UpdateID)

	updateType := "text"
	var replies []dialog.Reply
	if msg.IsCommand() {
		updateType = "command"
		replies = b.handleCommand(ctx, msg)
	} else {
		replies = b.machine.HandleText(ctx, msg.Chat.ID, msg.Text)
	}

	status := "success"
	if err := b.send(ctx, msg.Chat.ID, replies); err != nil {
		status = "error"
		log.WithError(err).Error("Failed to send reply")
	}

	duration := time.Since(start)
	b.metrics.RecordUpdate(updateType, status, duration.Seconds())
	log.WithField("update_type", updateType).
		WithField("duration_ms", duration.Milliseconds()).
		WithField("replies", len(replies)).
		Debug("Update processed")
}

// handleCommand maps a slash command to its dialog entry point.
// Unknown commands are ignored, matching how unregistered commands
// fall through without a reply.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) []dialog.Reply {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		return b.machine.Start(ctx, chatID, senderFirstName(msg))
	case "help":
		return b.machine.Help(ctx, chatID)
	case "programs":
		return b.machine.Programs(ctx, chatID)
	case "subjects":
		return b.machine.AskSubjects(ctx, chatID)
	case "competencies":
		return b.machine.AskCompetencies(ctx, chatID)
	case "duration":
		return b.machine.Duration(ctx, chatID)
	case "cancel":
		return b.machine.Cancel(ctx, chatID)
	default:
		b.log.WithChatID(chatID).Debugf("Ignoring unknown command: /%s", msg.Command())
		return nil
	}
}

func senderFirstName(msg *tgbotapi.Message) string {
	if msg.From != nil {
		return msg.From.FirstName
	}
	return ""
}

// send delivers replies in order, resolving keyboard directives to
// markup. A failed send aborts the remainder to keep chunk order intact.
func (b *Bot) send(ctx context.Context, chatID int64, replies []dialog.Reply) error {
	for _, reply := range replies {
		out := tgbotapi.NewMessage(chatID, reply.Text)
		if markup := b.replyMarkup(ctx, reply.Keyboard); markup != nil {
			out.ReplyMarkup = markup
		}
		if _, err := b.s.Send(out); err != nil {
			b.metrics.RecordReply("error")
			return fmt.Errorf("send message: %w", err)
		}
		b.metrics.RecordReply("success")
	}
	return nil
}

// Shutdown waits for in-flight update processing to complete.
// It returns an error if the context is canceled before completion.
func (b *Bot) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		b.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
