package scenario

import (
	"sync"

	"tradeTutor/internal/ports"
)

// Session is the explicit conversation context shared by generation and
// evaluation calls for one simulation run. It replaces hidden global oracle
// state: each game session owns its own Session and resets it when a new
// scenario starts, so concurrent simulations in one process cannot leak
// context into each other.
type Session struct {
	mu      sync.Mutex
	history []ports.OracleMessage
}

// NewSession creates an empty conversation context.
func NewSession() *Session {
	return &Session{}
}

// Messages returns the accumulated conversation plus the given user turn.
func (s *Session) Messages(userContent interface{}) []ports.OracleMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]ports.OracleMessage, 0, len(s.history)+1)
	msgs = append(msgs, s.history...)
	msgs = append(msgs, ports.OracleMessage{Role: "user", Content: userContent})
	return msgs
}

// Record appends a completed user/assistant exchange to the context.
func (s *Session) Record(userContent interface{}, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		ports.OracleMessage{Role: "user", Content: userContent},
		ports.OracleMessage{Role: "assistant", Content: assistantText},
	)
}

// Reset discards the accumulated context.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
