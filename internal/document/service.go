package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/knowledgeassistant/internal/cache"
	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
	"github.com/nikhilbhutani/knowledgeassistant/internal/store"
	"github.com/nikhilbhutani/knowledgeassistant/internal/vectorstore"
	"github.com/nikhilbhutani/knowledgeassistant/pkg/chunker"
)

// ErrUnsupportedType marks uploads rejected before extraction is attempted.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowedTypes = []string{".pdf", ".txt", ".md", ".docx"}

const (
	listCacheKey = "documents:list"
	listCacheTTL = 30 * time.Second
	listLimit    = 1000
)

// Service is the ingestion pipeline: extraction, chunking and indexing of
// uploaded files, plus listing and cascading deletion.
type Service struct {
	store     store.DocumentStore
	index     vectorstore.Index
	extractor TextExtractor
	chunker   *chunker.Chunker
	cache     *cache.Cache // optional
}

func NewService(docs store.DocumentStore, index vectorstore.Index, ch *chunker.Chunker, c *cache.Cache) *Service {
	return &Service{
		store:     docs,
		index:     index,
		extractor: NewTextExtractor(),
		chunker:   ch,
		cache:     c,
	}
}

// Upload ingests a file end to end. The document record is persisted only
// after the index write succeeds, so a ready document never claims chunks
// the index does not hold.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*models.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !isAllowed(ext) {
		return nil, fmt.Errorf("%w: %s not supported, allowed: %s",
			ErrUnsupportedType, ext, strings.Join(allowedTypes, ", "))
	}

	text, err := s.extractor.Extract(ctx, data, ext)
	if err != nil {
		return nil, err
	}

	docID := uuid.NewString()
	chunks := s.chunker.Chunk(text)

	if len(chunks) > 0 {
		ids := make([]string, len(chunks))
		metas := make([]vectorstore.ChunkMetadata, len(chunks))
		for i := range chunks {
			ids[i] = fmt.Sprintf("%s_%d", docID, i)
			metas[i] = vectorstore.ChunkMetadata{
				DocumentID: docID,
				Filename:   filename,
				ChunkIndex: i,
			}
		}

		if err := s.index.Add(ctx, ids, chunks, metas); err != nil {
			return nil, fmt.Errorf("index chunks: %w", err)
		}
	}

	doc := &models.Document{
		ID:         docID,
		Filename:   filename,
		FileType:   ext,
		FileSize:   int64(len(data)),
		ChunkCount: len(chunks),
		Status:     models.DocStatusReady,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	slog.Info("document ingested", "id", docID, "filename", filename, "chunks", len(chunks))
	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]models.Document, error) {
	if s.cache != nil {
		var docs []models.Document
		if err := s.cache.Get(ctx, listCacheKey, &docs); err == nil {
			return docs, nil
		}
	}

	docs, err := s.store.ListDocuments(ctx, listLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listCacheKey, docs, listCacheTTL); err != nil {
			slog.Warn("cache document list", "error", err)
		}
	}
	return docs, nil
}

// Delete removes the document record and then its indexed chunks. Chunk
// cleanup is best-effort: an index failure is logged, not surfaced.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}

	ids, err := s.index.Get(ctx, id)
	if err != nil {
		slog.Error("lookup chunks for deleted document", "document_id", id, "error", err)
	} else if len(ids) > 0 {
		if err := s.index.Delete(ctx, ids); err != nil {
			slog.Error("delete chunks for document", "document_id", id, "error", err)
		}
	}

	s.invalidateListCache(ctx)
	return nil
}

func (s *Service) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		slog.Warn("invalidate document list cache", "error", err)
	}
}

func isAllowed(ext string) bool {
	for _, t := range allowedTypes {
		if t == ext {
			return true
		}
	}
	return false
}
