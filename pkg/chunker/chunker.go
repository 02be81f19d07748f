package chunker

import (
	"fmt"
	"strings"
)

type Options struct {
	ChunkSize int // window size in words
	Overlap   int // words shared between consecutive windows
}

func DefaultOptions() Options {
	return Options{
		ChunkSize: 500,
		Overlap:   50,
	}
}

type Chunker struct {
	opts Options
}

// New validates opts and returns a chunker. Overlap must be strictly less
// than ChunkSize, otherwise the window start would never advance.
func New(opts Options) (*Chunker, error) {
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", opts.ChunkSize)
	}
	if opts.Overlap < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d", opts.Overlap)
	}
	if opts.Overlap >= opts.ChunkSize {
		return nil, fmt.Errorf("overlap %d must be less than chunk size %d", opts.Overlap, opts.ChunkSize)
	}
	return &Chunker{opts: opts}, nil
}

// Chunk splits text into overlapping windows of whitespace-delimited words.
// Consecutive windows share Overlap words; the final window may be shorter.
// Empty or whitespace-only windows are skipped.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	step := c.opts.ChunkSize - c.opts.Overlap

	for start := 0; start < len(words); start += step {
		end := start + c.opts.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[start:end], " ")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
