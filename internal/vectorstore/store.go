package vectorstore

import (
	"context"
)

// ChunkMetadata attributes an indexed chunk back to its document.
type ChunkMetadata struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}

// Result is one nearest-neighbor match for a query. Distance is cosine
// distance: lower is closer.
type Result struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// Index stores chunk text with internally computed embeddings and answers
// nearest-neighbor queries. Callers never see or supply vectors.
type Index interface {
	// Add batch-inserts chunks. ids, texts and metas are parallel slices.
	Add(ctx context.Context, ids []string, texts []string, metas []ChunkMetadata) error
	// Query returns up to k nearest chunks to text, closest first.
	Query(ctx context.Context, text string, k int) ([]Result, error)
	// Get returns the ids of all chunks belonging to a document.
	Get(ctx context.Context, documentID string) ([]string, error)
	// Delete removes chunks by id.
	Delete(ctx context.Context, ids []string) error
}
