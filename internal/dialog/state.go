// Package dialog tracks per-chat conversation state and routes incoming
// text to the matching reply flow.
//
// A chat is either at the main menu or waiting for the user to pick a
// program after one of the selection prompts. State lives in memory
// only; restarting the bot returns every chat to the main menu.
package dialog

import (
	"sync"

	"github.com/abitbot/itmo-masters-bot/internal/metrics"
)

// Pending identifies which reply the chosen program will be used for.
type Pending int

const (
	// PendingNone means the chat is at the main menu.
	PendingNone Pending = iota

	// PendingSubjects answers the selection with the program curriculum.
	PendingSubjects

	// PendingCompetencies answers the selection with the competency list.
	PendingCompetencies

	// PendingInfo answers the selection with the program info card.
	PendingInfo
)

// String returns the pending kind for logs.
func (p Pending) String() string {
	switch p {
	case PendingSubjects:
		return "subjects"
	case PendingCompetencies:
		return "competencies"
	case PendingInfo:
		return "info"
	default:
		return "none"
	}
}

// State is the dialog record of a single chat.
// The zero value is a chat at the main menu.
type State struct {
	Pending Pending
}

// AwaitingSelection reports whether the chat is waiting for a program choice.
func (s State) AwaitingSelection() bool {
	return s.Pending != PendingNone
}

// SessionStore keeps dialog state per chat in memory.
//
// Updates from one chat arrive in order from the poll loop, but
// different chats are processed concurrently, so access is guarded.
type SessionStore struct {
	mu      sync.RWMutex
	states  map[int64]State
	metrics *metrics.Metrics
}

// NewSessionStore creates an empty store.
func NewSessionStore(m *metrics.Metrics) *SessionStore {
	return &SessionStore{
		states:  make(map[int64]State),
		metrics: m,
	}
}

// Get returns the state of a chat. Unknown chats get the zero state.
func (s *SessionStore) Get(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[chatID]
}

// Set stores the state of a chat.
func (s *SessionStore) Set(chatID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = state
	s.metrics.SetSessionsActive(len(s.states))
}

// Reset returns a chat to the main menu.
func (s *SessionStore) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
	s.metrics.SetSessionsActive(len(s.states))
}

// Len returns the number of chats with stored state.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
