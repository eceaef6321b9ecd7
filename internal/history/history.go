// Package history implements the in-memory, session-scoped conversation log.
//
// A [Store] owns every session's turn sequence for the lifetime of the
// process. Sessions are created lazily on first append, capped at a fixed
// number of turns with pure FIFO eviction, and removed when the owning
// connection closes. Nothing is persisted: restart loses all history by
// design.
//
// The store is safe for concurrent use across sessions. Requests for the
// same session key are expected to arrive one at a time (the transport
// serialises per-connection work), but the internal lock makes interleaved
// access safe regardless.
package history

import (
	"strings"
	"sync"
	"time"
)

// DefaultMaxTurns is the per-session turn cap used by [NewStore].
const DefaultMaxTurns = 50

// Role labels used when rendering a transcript for generation context.
const (
	userLabel      = "User"
	assistantLabel = "TravelGuide"
)

// Turn is one recorded message within a session. Immutable once appended.
type Turn struct {
	// Text is the message content, in the language it was spoken/answered in.
	Text string `json:"text"`

	// IsUser is true for the speaker's messages, false for the assistant's.
	IsUser bool `json:"isUser"`

	// Timestamp is when the turn was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Language is the BCP-47 tag of the turn's text.
	Language string `json:"language"`
}

// Store holds the turn sequences of all live sessions, keyed by an opaque
// session key. Create one Store per process and inject it where needed.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	maxTurns int
}

// NewStore returns a Store with the default 50-turn cap per session.
func NewStore() *Store {
	return NewStoreWithCap(DefaultMaxTurns)
}

// NewStoreWithCap returns a Store with a custom per-session turn cap.
// A non-positive cap falls back to [DefaultMaxTurns].
func NewStoreWithCap(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		sessions: make(map[string][]Turn),
		maxTurns: maxTurns,
	}
}

// Append records a turn for the session, creating the session if it does not
// exist. When the sequence exceeds the cap the oldest turns are dropped
// until the length equals the cap again.
func (s *Store) Append(sessionKey, text string, isUser bool, language string) {
	turn := Turn{
		Text:      text,
		IsUser:    isUser,
		Timestamp: time.Now().UTC(),
		Language:  language,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionKey], turn)
	if excess := len(turns) - s.maxTurns; excess > 0 {
		turns = turns[excess:]
	}
	s.sessions[sessionKey] = turns
}

// Get returns the session's turns in chronological order. An unknown session
// key yields an empty slice, never an error. The returned slice is a copy;
// callers may retain it.
func (s *Store) Get(sessionKey string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionKey]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// AsText renders the session's transcript as newline-joined lines, each
// prefixed with a fixed role label, for use as LLM generation context.
// Unknown sessions render as the empty string.
func (s *Store) AsText(sessionKey string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionKey]
	if len(turns) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if t.IsUser {
			sb.WriteString(userLabel)
		} else {
			sb.WriteString(assistantLabel)
		}
		sb.WriteString(": ")
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Reset clears one session's turn sequence without affecting other sessions.
// Resetting an unknown session is a no-op.
func (s *Store) Reset(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey)
}

// Len reports the number of turns currently held for the session.
func (s *Store) Len(sessionKey string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[sessionKey])
}
