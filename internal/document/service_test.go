package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/knowledgeassistant/internal/models"
	"github.com/nikhilbhutani/knowledgeassistant/internal/store"
	"github.com/nikhilbhutani/knowledgeassistant/internal/vectorstore"
	"github.com/nikhilbhutani/knowledgeassistant/pkg/chunker"
)

func newTestService(t *testing.T) (*Service, *store.Memory, *vectorstore.Memory) {
	t.Helper()
	ch, err := chunker.New(chunker.DefaultOptions())
	require.NoError(t, err)

	records := store.NewMemory()
	index := vectorstore.NewMemory()
	return NewService(records, index, ch, nil), records, index
}

func sixHundredWords() []byte {
	parts := make([]string, 600)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i+1)
	}
	return []byte(strings.Join(parts, " "))
}

func TestUpload_SixHundredWordTxt(t *testing.T) {
	svc, records, index := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "report.txt", sixHundredWords())
	require.NoError(t, err)

	assert.Equal(t, "report.txt", doc.Filename)
	assert.Equal(t, ".txt", doc.FileType)
	assert.Equal(t, int64(len(sixHundredWords())), doc.FileSize)
	assert.Equal(t, 2, doc.ChunkCount)
	assert.Equal(t, models.DocStatusReady, doc.Status)

	ids, err := index.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{doc.ID + "_0", doc.ID + "_1"}, ids)

	docs, err := records.ListDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	svc, records, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "malware.exe", []byte("content"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), ".exe")
	assert.Contains(t, err.Error(), ".pdf, .txt, .md, .docx")

	docs, err := records.ListDocuments(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUpload_EmptyFile(t *testing.T) {
	svc, _, index := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "empty.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.ChunkCount)
	assert.Equal(t, models.DocStatusReady, doc.Status)

	ids, err := index.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpload_IdenticalContentDistinctDocuments(t *testing.T) {
	svc, _, index := newTestService(t)
	ctx := context.Background()

	content := []byte("same content in both uploads")
	first, err := svc.Upload(ctx, "a.txt", content)
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "b.txt", content)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	firstIDs, err := index.Get(ctx, first.ID)
	require.NoError(t, err)
	secondIDs, err := index.Get(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, firstIDs, 1)
	require.Len(t, secondIDs, 1)
	assert.NotEqual(t, firstIDs[0], secondIDs[0])
}

func TestDelete_CascadesToIndex(t *testing.T) {
	svc, records, index := newTestService(t)
	ctx := context.Background()

	keep, err := svc.Upload(ctx, "keep.txt", []byte("this one stays around"))
	require.NoError(t, err)
	gone, err := svc.Upload(ctx, "gone.txt", []byte("this one gets removed"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, gone.ID))

	ids, err := index.Get(ctx, gone.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = index.Get(ctx, keep.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, ids)

	docs, err := records.ListDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, keep.ID, docs[0].ID)
}

// brokenCleanupIndex accepts writes but fails every lookup and delete.
type brokenCleanupIndex struct {
	*vectorstore.Memory
}

func (b *brokenCleanupIndex) Get(ctx context.Context, documentID string) ([]string, error) {
	return nil, errors.New("index down")
}

func (b *brokenCleanupIndex) Delete(ctx context.Context, ids []string) error {
	return errors.New("index down")
}

func TestDelete_IndexFailureIsBestEffort(t *testing.T) {
	ch, err := chunker.New(chunker.DefaultOptions())
	require.NoError(t, err)

	records := store.NewMemory()
	index := &brokenCleanupIndex{Memory: vectorstore.NewMemory()}
	svc := NewService(records, index, ch, nil)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "orphan.txt", []byte("chunk cleanup will fail for this one"))
	require.NoError(t, err)

	// The record deletion succeeds even though the index refuses both the
	// chunk lookup and the delete.
	require.NoError(t, svc.Delete(ctx, doc.ID))

	docs, err := records.ListDocuments(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Delete(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
