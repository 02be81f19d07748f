package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
	"github.com/nikhilbhutani/knowledgeassistant/internal/vectorstore"
)

const (
	// DefaultTopK is how many chunks a query pulls from the index.
	DefaultTopK = 5
	// citationPreviewLen caps SourceCitation.Content.
	citationPreviewLen = 300
)

// Retriever queries the vector index and assembles the context block and
// source citations for generation.
type Retriever struct {
	index vectorstore.Index
	topK  int
}

func NewRetriever(index vectorstore.Index, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{index: index, topK: topK}
}

// Retrieve returns a labeled context block and citations for the top-k
// chunks nearest to query. An index failure degrades to an empty context;
// it never fails the caller.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, []models.SourceCitation) {
	results, err := r.index.Query(ctx, query, r.topK)
	if err != nil {
		slog.Error("vector index query", "error", err)
		return "", nil
	}

	var sb strings.Builder
	var sources []models.SourceCitation

	for i, res := range results {
		sources = append(sources, models.SourceCitation{
			Content:    truncate(res.Text, citationPreviewLen),
			Filename:   res.Metadata.Filename,
			ChunkIndex: res.Metadata.ChunkIndex,
		})
		fmt.Fprintf(&sb, "\n[Source %d - %s]:\n%s\n", i+1, res.Metadata.Filename, res.Text)
	}

	return sb.String(), sources
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
