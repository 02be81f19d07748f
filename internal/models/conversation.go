package models

import (
	"time"
)

const DefaultConversationTitle = "New Conversation"

// Conversation is a thread of messages. UpdatedAt is bumped on every new
// exchange; Title is overwritten once after the first exchange.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation. Sources is empty for user turns.
type Message struct {
	ID             string           `json:"id" db:"id"`
	ConversationID string           `json:"conversation_id" db:"conversation_id"`
	Role           string           `json:"role" db:"role"`
	Content        string           `json:"content" db:"content"`
	Sources        []SourceCitation `json:"sources" db:"sources"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}
