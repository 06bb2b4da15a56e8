package interfaces

import (
	"context"

	"waisdom/internal/models"
)

// Extractor is the enrichment gateway: it turns a raw submission (URL, plain
// text, or PDF bytes) into a normalized (title, text, metadata) result.
// Extraction failures are reported as *models.ExtractionError; kinds without
// a real extractor come back with Supported=false.
type Extractor interface {
	FromURL(ctx context.Context, url string) (*models.Extraction, error)
	FromText(ctx context.Context, text, source string) (*models.Extraction, error)
	FromPDF(ctx context.Context, data []byte, sourceURL string) (*models.Extraction, error)
	DetectContentType(url, fileExtension string) models.ContentType
}

// InsightGateway is the language-model pass: summarization, question
// answering over retrieved context, and revisit recommendations.
type InsightGateway interface {
	Summarize(ctx context.Context, text string, metadata map[string]interface{}) (*models.Insight, error)
	Answer(ctx context.Context, question string, contextDocs []models.SearchHit) (string, error)
	Recommend(ctx context.Context, interests []string, recent []models.RecordDigest) ([]models.Recommendation, error)
}

// VectorIndex maps record text to a searchable embedding entry and resolves
// similarity queries back to content identifiers.
type VectorIndex interface {
	// Add indexes the text and returns the new embedding id.
	Add(ctx context.Context, contentID, text string, metadata map[string]interface{}) (string, error)
	// Search returns up to k hits ranked by similarity (0..1, higher is
	// more similar). Filters are string-equality matches on metadata; a
	// backend that only indexes some metadata keys ignores the others
	// rather than failing the search.
	Search(ctx context.Context, query string, k int, filters map[string]interface{}) ([]models.SearchHit, error)
	// Delete removes an entry. Deleting an unknown id is not an error.
	Delete(ctx context.Context, embeddingID string) error
	// Update replaces an entry's text and metadata. Backends without
	// in-place update implement it as delete-then-add, so the returned
	// embedding id may differ from the input and must be persisted.
	Update(ctx context.Context, embeddingID, contentID, text string, metadata map[string]interface{}) (string, error)
}

// Embedder is a text embedding model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
