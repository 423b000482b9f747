package domain

import (
	"fmt"
	"time"
)

// Message roles stored in session history.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message is one turn of a chat session.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session keeps per-conversation state: the chat history handed back to
// the model for continuity, and the sticky corpus hint so follow-up
// questions stay routed to the same institution.
type Session struct {
	ID         string    `json:"id"`
	CorpusHint string    `json:"corpus_hint,omitempty"`
	History    []Message `json:"history"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidateMessage validates a session message.
func ValidateMessage(m *Message) error {
	if m == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if m.Role != MessageRoleUser && m.Role != MessageRoleAssistant {
		return fmt.Errorf("message role is invalid: %s", m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("message content is required")
	}
	return nil
}
