// Package session holds bounded conversation history per session
// identifier, kept in memory for the lifetime of the process.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string
	Content string
}

type conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// Store keeps per-session history with FIFO eviction at maxTurns. Each
// session has its own lock so concurrent queries on different sessions
// never block each other.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*conversation
	maxTurns int
}

// NewStore creates a Store capped at maxTurns turns per session.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = 4
	}
	return &Store{
		sessions: make(map[string]*conversation),
		maxTurns: maxTurns,
	}
}

// NewSession allocates a fresh session identifier.
func (s *Store) NewSession() string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &conversation{}
	s.mu.Unlock()
	return id
}

// Append adds a turn to the session, dropping the oldest turn first when
// the session is at capacity. Appending to an unknown session creates it;
// a missing session is never an error.
func (s *Store) Append(sessionID, role, content string) {
	conv := s.conversation(sessionID, true)

	conv.mu.Lock()
	defer conv.mu.Unlock()
	for len(conv.turns) >= s.maxTurns {
		conv.turns = conv.turns[1:]
	}
	conv.turns = append(conv.turns, Turn{Role: role, Content: content})
}

// History returns the session's turns in order, oldest first. Unknown
// sessions have empty history.
func (s *Store) History(sessionID string) []Turn {
	conv := s.conversation(sessionID, false)
	if conv == nil {
		return nil
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	out := make([]Turn, len(conv.turns))
	copy(out, conv.turns)
	return out
}

// FormatHistory renders the session transcript for prompt embedding.
// Returns "" for empty or unknown sessions.
func (s *Store) FormatHistory(sessionID string) string {
	turns := s.History(sessionID)
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, len(turns))
	for i, turn := range turns {
		role := turn.Role
		switch role {
		case RoleUser:
			role = "User"
		case RoleAssistant:
			role = "Assistant"
		}
		lines[i] = fmt.Sprintf("%s: %s", role, turn.Content)
	}
	return strings.Join(lines, "\n")
}

func (s *Store) conversation(sessionID string, create bool) *conversation {
	s.mu.RLock()
	conv := s.sessions[sessionID]
	s.mu.RUnlock()
	if conv != nil || !create {
		return conv
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv = s.sessions[sessionID]; conv == nil {
		conv = &conversation{}
		s.sessions[sessionID] = conv
	}
	return conv
}
