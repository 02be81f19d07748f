package document

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/knowledgeassistant/pkg/textextract"
)

type TextExtractor interface {
	Extract(ctx context.Context, data []byte, fileType string) (string, error)
	SupportedTypes() []string
}

type extractor struct{}

func NewTextExtractor() TextExtractor {
	return &extractor{}
}

func (e *extractor) Extract(ctx context.Context, data []byte, fileType string) (string, error) {
	text, err := textextract.Extract(data, fileType)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

func (e *extractor) SupportedTypes() []string {
	return textextract.SupportedTypes()
}
