package vectorindex

import (
	"context"
	"testing"
)

// fakeEmbedder maps known strings to fixed unit vectors so similarity
// ordering is predictable.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{
		"go concurrency":  {1, 0, 0},
		"goroutines":      {0.9, 0.1, 0},
		"cooking recipes": {0, 0, 1},
	}}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 1, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func TestMemoryAddAndSearch(t *testing.T) {
	m := NewMemory(newFakeEmbedder())
	ctx := context.Background()

	idA, err := m.Add(ctx, "content-a", "goroutines", map[string]interface{}{"content_type": "article"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if idA == "" {
		t.Fatal("expected a generated embedding id")
	}
	if _, err := m.Add(ctx, "content-b", "cooking recipes", map[string]interface{}{"content_type": "text"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	hits, err := m.Search(ctx, "go concurrency", 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ContentID != "content-a" {
		t.Errorf("top hit = %q, want the similar document", hits[0].ContentID)
	}
	if hits[0].Similarity <= hits[1].Similarity {
		t.Error("hits must be ordered by descending similarity")
	}
	if hits[0].Similarity < 0 || hits[0].Similarity > 1 {
		t.Errorf("similarity %v outside [0,1]", hits[0].Similarity)
	}
	if hits[0].Text != "goroutines" {
		t.Errorf("hit text = %q, want the indexed text", hits[0].Text)
	}
}

func TestMemorySearchTopK(t *testing.T) {
	m := NewMemory(newFakeEmbedder())
	ctx := context.Background()

	for _, text := range []string{"goroutines", "cooking recipes", "go concurrency"} {
		if _, err := m.Add(ctx, "c-"+text, text, nil); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	hits, err := m.Search(ctx, "go concurrency", 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want k=2", len(hits))
	}
}

func TestMemorySearchFilters(t *testing.T) {
	m := NewMemory(newFakeEmbedder())
	ctx := context.Background()

	if _, err := m.Add(ctx, "a", "goroutines", map[string]interface{}{"content_type": "article"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := m.Add(ctx, "b", "cooking recipes", map[string]interface{}{"content_type": "text"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	hits, err := m.Search(ctx, "go concurrency", 10, map[string]interface{}{"content_type": "text"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ContentID != "b" {
		t.Errorf("filtered hits = %+v, want only the text record", hits)
	}
}

func TestMemoryDeleteIdempotent(t *testing.T) {
	m := NewMemory(newFakeEmbedder())
	ctx := context.Background()

	id, err := m.Add(ctx, "a", "goroutines", nil)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := m.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := m.Delete(ctx, id); err != nil {
		t.Errorf("deleting an unknown id must not fail, got %v", err)
	}

	hits, err := m.Search(ctx, "go concurrency", 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Error("deleted entries must not be searchable")
	}
}

func TestMemoryUpdateReturnsNewID(t *testing.T) {
	m := NewMemory(newFakeEmbedder())
	ctx := context.Background()

	oldID, err := m.Add(ctx, "a", "goroutines", nil)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	newID, err := m.Update(ctx, oldID, "a", "go concurrency", nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if newID == oldID {
		t.Error("delete-then-add update must mint a new id")
	}

	hits, err := m.Search(ctx, "go concurrency", 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].EmbeddingID != newID {
		t.Errorf("hits = %+v, want only the updated entry", hits)
	}
}

func TestNormalizeCosine(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{-1, 0},
		{0, 0.5},
		{1, 1},
	}
	for _, c := range cases {
		if got := normalizeCosine(c.raw); got != c.want {
			t.Errorf("normalizeCosine(%v) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("cosine of identical vectors = %v, want 1", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("cosine of orthogonal vectors = %v, want 0", got)
	}
	if got := cosine([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("cosine with zero vector = %v, want 0", got)
	}
}
