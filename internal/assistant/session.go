// Package assistant is the prompt-engineering chat companion.
package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mexffff/PromptUzman/internal/generation"
)

// Greeting opens every session. It is shown to the user but never sent to the model.
const Greeting = "Merhaba! Fikirlerinizi geliştirmek veya promptlar hakkında konuşmak için buradayım."

// Chatter answers a message given the prior conversation.
// *generation.Client implements it.
type Chatter interface {
	Chat(ctx context.Context, history []generation.Message, message string) generation.Result[string]
}

// Turn is one message of the conversation.
type Turn struct {
	Role generation.Role `json:"role"`
	Text string          `json:"text"`
	At   time.Time       `json:"at"`
}

// Session holds one multi-turn conversation.
type Session struct {
	chat Chatter
	now  func() time.Time

	mu      sync.Mutex
	turns   []Turn
	sending bool
}

// NewSession starts a conversation with the greeting.
func NewSession(chat Chatter) *Session {
	s := &Session{chat: chat, now: time.Now}
	s.turns = []Turn{{Role: generation.RoleModel, Text: Greeting, At: s.now()}}
	return s
}

// Send posts message and waits for the reply. Blank messages, and messages
// sent while a reply is pending, are ignored and return false.
// A failed call still appends the fallback reply.
func (s *Session) Send(ctx context.Context, message string) (Turn, bool) {
	message = strings.TrimSpace(message)

	s.mu.Lock()
	if message == "" || s.sending {
		s.mu.Unlock()
		return Turn{}, false
	}
	history := s.history()
	s.turns = append(s.turns, Turn{Role: generation.RoleUser, Text: message, At: s.now()})
	s.sending = true
	s.mu.Unlock()

	res := s.chat.Chat(ctx, history, message)

	s.mu.Lock()
	defer s.mu.Unlock()
	reply := Turn{Role: generation.RoleModel, Text: res.Value, At: s.now()}
	s.turns = append(s.turns, reply)
	s.sending = false
	return reply, true
}

// Turns returns a copy of the conversation, greeting first.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// history is the conversation the model has seen, without the greeting.
func (s *Session) history() []generation.Message {
	msgs := make([]generation.Message, 0, len(s.turns))
	for _, t := range s.turns[1:] {
		msgs = append(msgs, generation.Message{Role: t.Role, Text: t.Text})
	}
	return msgs
}
