// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	chatIDKey   contextKey = "ctxutil.chatID"
	userIDKey   contextKey = "ctxutil.userID"
	updateIDKey contextKey = "ctxutil.updateID"
)

// WithChatID adds a Telegram chat ID to the context.
// Chat ID identifies the conversation and keys dialog session state.
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

// GetChatID retrieves the chat ID from the context.
// Returns the chat ID if found, zero otherwise.
func GetChatID(ctx context.Context) int64 {
	if v := ctx.Value(chatIDKey); v != nil {
		if chatID, ok := v.(int64); ok && chatID != 0 {
			return chatID
		}
	}
	return 0
}

// WithUserID adds a Telegram user ID to the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the user ID from the context.
// Returns the user ID if found, zero otherwise.
func GetUserID(ctx context.Context) int64 {
	if v := ctx.Value(userIDKey); v != nil {
		if userID, ok := v.(int64); ok && userID != 0 {
			return userID
		}
	}
	return 0
}

// WithUpdateID adds the Telegram update ID to the context for log correlation.
func WithUpdateID(ctx context.Context, updateID int) context.Context {
	return context.WithValue(ctx, updateIDKey, updateID)
}

// GetUpdateID retrieves the update ID from the context.
// Returns the update ID and true if found, zero and false otherwise.
func GetUpdateID(ctx context.Context) (int, bool) {
	updateID, ok := ctx.Value(updateIDKey).(int)
	return updateID, ok
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// This function creates a fresh context.Background() and copies only tracing
// values, avoiding memory leaks from retaining parent context references.
//
// Use for async operations that must outlive the per-update context, such as
// snapshot uploads kicked off from a handler.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if chatID := GetChatID(ctx); chatID != 0 {
		newCtx = WithChatID(newCtx, chatID)
	}
	if userID := GetUserID(ctx); userID != 0 {
		newCtx = WithUserID(newCtx, userID)
	}
	if updateID, ok := GetUpdateID(ctx); ok {
		newCtx = WithUpdateID(newCtx, updateID)
	}

	return newCtx
}
