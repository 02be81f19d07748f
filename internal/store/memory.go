package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
)

// Memory implements all three stores in process. Used by tests and local
// runs without a database.
type Memory struct {
	mu            sync.RWMutex
	documents     []models.Document
	conversations map[string]*models.Conversation
	messages      []models.Message
}

func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]*models.Conversation),
	}
}

func (m *Memory) InsertDocument(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, *doc)
	return nil
}

func (m *Memory) ListDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]models.Document, len(m.documents))
	copy(docs, m.documents)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *Memory) DeleteDocument(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, d := range m.documents {
		if d.ID == id {
			m.documents = append(m.documents[:i], m.documents[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) InsertConversation(ctx context.Context, conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *conv
	m.conversations[c.ID] = &c
	return nil
}

func (m *Memory) ListConversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	convs := make([]models.Conversation, 0, len(m.conversations))
	for _, c := range m.conversations {
		convs = append(convs, *c)
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

func (m *Memory) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *Memory) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conversations[id]; !ok {
		return ErrNotFound
	}
	delete(m.conversations, id)
	return nil
}

func (m *Memory) SetTitle(ctx context.Context, id, title string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.conversations[id]; ok {
		c.Title = title
		c.UpdatedAt = updatedAt
	}
	return nil
}

func (m *Memory) Touch(ctx context.Context, id string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.conversations[id]; ok {
		c.UpdatedAt = updatedAt
	}
	return nil
}

func (m *Memory) InsertMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Deep-copy sources the way a serializing store would.
	cp := *msg
	if msg.Sources != nil {
		data, err := json.Marshal(msg.Sources)
		if err != nil {
			return err
		}
		cp.Sources = nil
		if err := json.Unmarshal(data, &cp.Sources); err != nil {
			return err
		}
	}
	m.messages = append(m.messages, cp)
	return nil
}

func (m *Memory) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var msgs []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (m *Memory) CountMessages(ctx context.Context, conversationID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) DeleteMessages(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}
