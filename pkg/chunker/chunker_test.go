package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i+1)
	}
	return strings.Join(parts, " ")
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero size", Options{ChunkSize: 0, Overlap: 0}},
		{"negative size", Options{ChunkSize: -1, Overlap: 0}},
		{"negative overlap", Options{ChunkSize: 10, Overlap: -1}},
		{"overlap equals size", Options{ChunkSize: 10, Overlap: 10}},
		{"overlap exceeds size", Options{ChunkSize: 10, Overlap: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestChunk_Empty(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n\t  "))
}

func TestChunk_ShorterThanWindow(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	chunks := c.Chunk("just a few words here")
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a few words here", chunks[0])
}

func TestChunk_SixHundredWords(t *testing.T) {
	c, err := New(DefaultOptions()) // 500/50
	require.NoError(t, err)

	chunks := c.Chunk(words(600))
	require.Len(t, chunks, 2)

	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])

	require.Len(t, first, 500)
	require.Len(t, second, 150)
	assert.Equal(t, "word1", first[0])
	assert.Equal(t, "word500", first[499])
	assert.Equal(t, "word451", second[0])
	assert.Equal(t, "word600", second[149])
}

func TestChunk_OverlapShared(t *testing.T) {
	c, err := New(Options{ChunkSize: 10, Overlap: 3})
	require.NoError(t, err)

	chunks := c.Chunk(words(25))
	require.True(t, len(chunks) >= 2)

	for i := 0; i < len(chunks)-1; i++ {
		cur := strings.Fields(chunks[i])
		next := strings.Fields(chunks[i+1])
		tail := cur[len(cur)-3:]
		head := next[:3]
		assert.Equal(t, tail, head, "chunks %d and %d should share 3 words", i, i+1)
	}
}

func TestChunk_CountFormula(t *testing.T) {
	// One chunk per start position 0, c-o, 2(c-o), ... strictly below n,
	// i.e. ceil(n/(c-o)) for n > 0. This exceeds the naive
	// ceil((n-o)/(c-o)) whenever the final start lands inside the previous
	// window's overlap tail: those runs emit a short trailing chunk of
	// already-seen words (500/500/50 -> 2, 100/10/3 -> 15).
	tests := []struct {
		n, c, o int
		want    int
	}{
		{600, 500, 50, 2},
		{500, 500, 50, 2},
		{501, 500, 50, 2},
		{1000, 500, 50, 3},
		{1, 500, 50, 1},
		{100, 10, 3, 15},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d_c=%d_o=%d", tt.n, tt.c, tt.o), func(t *testing.T) {
			ck, err := New(Options{ChunkSize: tt.c, Overlap: tt.o})
			require.NoError(t, err)
			assert.Len(t, ck.Chunk(words(tt.n)), tt.want)
		})
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c, err := New(Options{ChunkSize: 20, Overlap: 5})
	require.NoError(t, err)

	text := words(137)
	assert.Equal(t, c.Chunk(text), c.Chunk(text))
}

func TestChunk_NoEmptyChunks(t *testing.T) {
	c, err := New(Options{ChunkSize: 5, Overlap: 1})
	require.NoError(t, err)

	for _, chunk := range c.Chunk("a b   c\n\nd \t e f g h i j k") {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestChunk_NormalizesWhitespace(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	chunks := c.Chunk("alpha\tbeta\n\ngamma   delta")
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha beta gamma delta", chunks[0])
}
