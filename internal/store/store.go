package store

import (
	"context"
	"errors"
	"time"

	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
)

// ErrNotFound distinguishes missing records from other failures. Handlers map
// it to a 404.
var ErrNotFound = errors.New("not found")

type DocumentStore interface {
	InsertDocument(ctx context.Context, doc *models.Document) error
	ListDocuments(ctx context.Context, limit int) ([]models.Document, error)
	// DeleteDocument returns ErrNotFound when no document has the given id.
	DeleteDocument(ctx context.Context, id string) error
}

type ConversationStore interface {
	InsertConversation(ctx context.Context, conv *models.Conversation) error
	// ListConversations returns conversations most recently updated first.
	ListConversations(ctx context.Context, limit int) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	// DeleteConversation returns ErrNotFound when no conversation has the given id.
	DeleteConversation(ctx context.Context, id string) error
	SetTitle(ctx context.Context, id, title string, updatedAt time.Time) error
	Touch(ctx context.Context, id string, updatedAt time.Time) error
}

type MessageStore interface {
	InsertMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns a conversation's messages oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	CountMessages(ctx context.Context, conversationID string) (int, error)
	DeleteMessages(ctx context.Context, conversationID string) error
}
