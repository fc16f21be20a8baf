// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting and supports context-based logging
// with chat IDs and module names.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger

	// async is the remote shipping pipeline, nil when only local output
	// is configured. Kept on the struct so any derived logger can flush
	// it at shutdown.
	async *AsyncHandler
}

// ParseLevel maps a config string to a slog level. Unknown values fall back
// to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewJSONHandler creates the local JSON handler with renamed standard keys
// (timestamp/level/message, "warning" spelled out).
func NewJSONHandler(level string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
				// slog uses RFC3339Nano by default, which is fine
			}
			if a.Key == slog.LevelKey {
				a.Key = "level"
				level := a.Value.String()
				if level == "WARN" {
					level = "warning"
				} else {
					level = strings.ToLower(level)
				}
				a.Value = slog.StringValue(level)
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}
			return a
		},
	}
	return slog.NewJSONHandler(w, opts)
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithHandler(NewJSONHandler(level, w))
}

// NewWithHandler creates a logger on top of a prebuilt handler chain.
// Used by cmd wiring to compose MultiHandler/AsyncHandler/ContextHandler.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{Logger: slog.New(h)}
}

// Options configures optional log shipping targets.
type Options struct {
	BetterStackToken    string
	BetterStackEndpoint string
}

// NewWithOptions creates the full production logger: JSON to w, context
// value extraction, and Better Stack shipping when a source token is set.
// Remote records go through an async pipeline so a slow or failing uploader
// never blocks update handling. Call Shutdown before exit to flush it.
func NewWithOptions(level string, w io.Writer, opts Options) *Logger {
	local := NewJSONHandler(level, w)
	if opts.BetterStackToken == "" {
		return NewWithHandler(NewContextHandler(local))
	}

	remote := slogbetterstack.Option{
		Level:    ParseLevel(level),
		Token:    opts.BetterStackToken,
		Endpoint: opts.BetterStackEndpoint,
	}.NewBetterstackHandler()
	async := NewAsyncHandler(remote, AsyncOptions{})

	handler := NewContextHandler(NewMultiHandler(local, async))
	return &Logger{Logger: slog.New(handler), async: async}
}

// Shutdown flushes pending remote log shipments. It is a no-op for
// loggers without remote shipping.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l.async == nil {
		return nil
	}
	return l.async.Shutdown(ctx)
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return &Logger{Logger: l.With("module", module), async: l.async}
}

// WithChatID creates a new entry with chat ID field
func (l *Logger) WithChatID(chatID int64) *Logger {
	return &Logger{Logger: l.With("chat_id", chatID), async: l.async}
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err), async: l.async}
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value), async: l.async}
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...), async: l.async}
}

// Compatibility methods for logrus-style formatting

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Fatal logs at error level and exits. Only for startup wiring; running
// code paths return errors instead.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// Fatalf logs a formatted message at error level and exits.
func (l *Logger) Fatalf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
