package vectorstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memEntry struct {
	id   string
	text string
	meta ChunkMetadata
}

// Memory is a brute-force in-memory Index. Instead of real embeddings it
// scores by word overlap between query and chunk, which keeps it
// deterministic and dependency-free for tests and local runs.
type Memory struct {
	mu      sync.RWMutex
	entries []memEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Add(ctx context.Context, ids []string, texts []string, metas []ChunkMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		m.entries = append(m.entries, memEntry{id: id, text: texts[i], meta: metas[i]})
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if k <= 0 {
		k = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	queryWords := wordSet(text)
	if len(queryWords) == 0 || len(m.entries) == 0 {
		return nil, nil
	}

	var results []Result
	for _, e := range m.entries {
		score := overlapScore(queryWords, wordSet(e.text))
		if score == 0 {
			continue
		}
		results = append(results, Result{
			Text:     e.text,
			Metadata: e.meta,
			Distance: 1 - score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *Memory) Get(ctx context.Context, documentID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for _, e := range m.entries {
		if e.meta.DocumentID == documentID {
			ids = append(ids, e.id)
		}
	}
	return ids, nil
}

func (m *Memory) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := m.entries[:0]
	for _, e := range m.entries {
		if !drop[e.id] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,!?;:\"'()")] = true
	}
	delete(set, "")
	return set
}

// overlapScore is the fraction of query words present in the chunk.
func overlapScore(query, chunk map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for w := range query {
		if chunk[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
