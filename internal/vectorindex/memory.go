package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"waisdom/internal/interfaces"
	"waisdom/internal/models"
)

// entry is one indexed document in the in-memory store.
type entry struct {
	embeddingID string
	contentID   string
	text        string
	vector      []float32
	metadata    map[string]interface{}
}

// Memory is a brute-force cosine-similarity vector index. It is the local
// backend for a single-user archive; the Milvus adapter serves the same
// interface against a real vector database.
type Memory struct {
	mu       sync.RWMutex
	embedder interfaces.Embedder
	entries  map[string]*entry
}

// NewMemory creates an empty in-memory index over the given embedder.
func NewMemory(embedder interfaces.Embedder) *Memory {
	return &Memory{
		embedder: embedder,
		entries:  make(map[string]*entry),
	}
}

// Add embeds the text and stores it under a fresh embedding id.
func (m *Memory) Add(ctx context.Context, contentID, text string, metadata map[string]interface{}) (string, error) {
	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return "", &models.IndexingError{ContentID: contentID, Err: err}
	}

	embeddingID := uuid.New().String()
	m.mu.Lock()
	m.entries[embeddingID] = &entry{
		embeddingID: embeddingID,
		contentID:   contentID,
		text:        text,
		vector:      vector,
		metadata:    metadata,
	}
	m.mu.Unlock()

	return embeddingID, nil
}

// Search embeds the query and returns the k nearest entries that pass the
// filters, ranked by cosine similarity mapped into [0, 1].
func (m *Memory) Search(ctx context.Context, query string, k int, filters map[string]interface{}) ([]models.SearchHit, error) {
	queryVector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if k <= 0 {
		k = 5
	}

	m.mu.RLock()
	hits := make([]models.SearchHit, 0, len(m.entries))
	for _, e := range m.entries {
		if !matchesFilters(e.metadata, filters) {
			continue
		}
		hits = append(hits, models.SearchHit{
			EmbeddingID: e.embeddingID,
			ContentID:   e.contentID,
			Text:        e.text,
			Similarity:  normalizeCosine(cosine(queryVector, e.vector)),
			Metadata:    e.metadata,
		})
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes an entry. Unknown ids are ignored.
func (m *Memory) Delete(ctx context.Context, embeddingID string) error {
	m.mu.Lock()
	delete(m.entries, embeddingID)
	m.mu.Unlock()
	return nil
}

// Update replaces an entry as delete-then-add, returning the new id.
func (m *Memory) Update(ctx context.Context, embeddingID, contentID, text string, metadata map[string]interface{}) (string, error) {
	if err := m.Delete(ctx, embeddingID); err != nil {
		return "", err
	}
	return m.Add(ctx, contentID, text, metadata)
}

// matchesFilters applies string-equality filters against entry metadata.
func matchesFilters(metadata, filters map[string]interface{}) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

// normalizeCosine maps a raw cosine similarity from [-1, 1] into the [0, 1]
// score range both index backends report.
func normalizeCosine(c float64) float64 {
	return (c + 1) / 2
}

// cosine computes the cosine similarity of two vectors.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ interfaces.VectorIndex = (*Memory)(nil)
