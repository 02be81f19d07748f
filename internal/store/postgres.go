package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
)

// Postgres implements DocumentStore, ConversationStore and MessageStore on a
// shared pgx pool.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) InsertDocument(ctx context.Context, doc *models.Document) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO documents (id, filename, file_type, file_size, chunk_count, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.Filename, doc.FileType, doc.FileSize, doc.ChunkCount, doc.Status, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Postgres) ListDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, filename, file_type, file_size, chunk_count, status, created_at
		 FROM documents ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.FileType, &d.FileSize, &d.ChunkCount, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Postgres) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) InsertConversation(ctx context.Context, conv *models.Conversation) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		conv.ID, conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (s *Postgres) ListConversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, created_at, updated_at
		 FROM conversations ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (s *Postgres) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := s.db.QueryRow(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = $1", id,
	).Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

func (s *Postgres) DeleteConversation(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM conversations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) SetTitle(ctx context.Context, id, title string, updatedAt time.Time) error {
	_, err := s.db.Exec(ctx,
		"UPDATE conversations SET title = $1, updated_at = $2 WHERE id = $3",
		title, updatedAt, id,
	)
	return err
}

func (s *Postgres) Touch(ctx context.Context, id string, updatedAt time.Time) error {
	_, err := s.db.Exec(ctx,
		"UPDATE conversations SET updated_at = $1 WHERE id = $2",
		updatedAt, id,
	)
	return err
}

func (s *Postgres) InsertMessage(ctx context.Context, msg *models.Message) error {
	sources, err := json.Marshal(msg.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, sources, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, sources, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *Postgres) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, conversation_id, role, content, sources, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		var sources []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &sources, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &m.Sources); err != nil {
				return nil, fmt.Errorf("unmarshal sources: %w", err)
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *Postgres) CountMessages(ctx context.Context, conversationID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM messages WHERE conversation_id = $1", conversationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

func (s *Postgres) DeleteMessages(ctx context.Context, conversationID string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM messages WHERE conversation_id = $1", conversationID)
	return err
}
