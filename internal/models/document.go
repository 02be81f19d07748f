package models

import (
	"time"
)

// Document is one ingested file. ChunkCount and Status are set once during
// ingestion; everything else is immutable after creation.
type Document struct {
	ID         string    `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	FileType   string    `json:"file_type" db:"file_type"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	ChunkCount int       `json:"chunk_count" db:"chunk_count"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

const (
	DocStatusProcessing = "processing"
	DocStatusReady      = "ready"
	DocStatusFailed     = "failed"
)

// SourceCitation attributes a retrieved chunk back to its document. Content
// holds at most the first 300 characters of the chunk text.
type SourceCitation struct {
	Content    string `json:"content"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}
