package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/nikhilbhutani/knowledgeassistant/internal/embedding"
)

// PgVector is an Index backed by Postgres with the pgvector extension.
// Embeddings are computed inside the store via the embedding service, so
// callers deal only in text.
type PgVector struct {
	db       *pgxpool.Pool
	embedSvc *embedding.Service
}

func NewPgVector(db *pgxpool.Pool, embedSvc *embedding.Service) *PgVector {
	return &PgVector{db: db, embedSvc: embedSvc}
}

func (s *PgVector) Add(ctx context.Context, ids []string, texts []string, metas []ChunkMetadata) error {
	if len(ids) != len(texts) || len(ids) != len(metas) {
		return fmt.Errorf("ids, texts and metadatas must have equal length")
	}
	if len(ids) == 0 {
		return nil
	}

	embeddings, err := s.embedSvc.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, id := range ids {
		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, filename, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET content = $5, embedding = $6`,
			id, metas[i].DocumentID, metas[i].Filename, metas[i].ChunkIndex, texts[i], pgvector.NewVector(embeddings[i]),
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", id, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgVector) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if k <= 0 {
		k = 5
	}

	queryVec, err := s.embedSvc.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	embedded := pgvector.NewVector(queryVec)

	rows, err := s.db.Query(ctx,
		`SELECT content, document_id, filename, chunk_index,
		        embedding <=> $1 AS distance
		 FROM document_chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		embedded, k,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Text, &r.Metadata.DocumentID, &r.Metadata.Filename, &r.Metadata.ChunkIndex, &r.Distance); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVector) Get(ctx context.Context, documentID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id FROM document_chunks WHERE document_id = $1", documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PgVector) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, "DELETE FROM document_chunks WHERE id = ANY($1)", ids)
	return err
}
