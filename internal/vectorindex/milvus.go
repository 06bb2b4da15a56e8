package vectorindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"waisdom/internal/config"
	"waisdom/internal/interfaces"
	"waisdom/internal/models"
	"waisdom/pkg/logger"
)

const (
	// Schema fields of the Milvus collection that back the content index.
	FieldEmbeddingID = "embedding_id"
	FieldContentID   = "content_id"
	FieldText        = "text"
	FieldContentType = "content_type"
	FieldEmbedding   = "embedding"

	textMaxLength = 65535
	idMaxLength   = 64
)

// MilvusIndex is the Milvus-backed vector index. It owns the collection
// schema: a varchar primary key per indexed document plus the stored text so
// search hits carry a usable snippet without a second lookup.
type MilvusIndex struct {
	log        *logger.Logger
	client     client.Client
	embedder   interfaces.Embedder
	collection string
	dim        int
}

// NewMilvusIndex connects to Milvus and makes sure the content collection
// exists and is loaded.
func NewMilvusIndex(ctx context.Context, cfg config.MilvusConfig, embedder interfaces.Embedder, log *logger.Logger) (*MilvusIndex, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus at '%s': %w", cfg.Address, err)
	}

	idx := &MilvusIndex{
		log:        log,
		client:     c,
		embedder:   embedder,
		collection: cfg.Collection,
		dim:        cfg.Dim,
	}
	if err := idx.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the Milvus connection.
func (s *MilvusIndex) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// ensureCollection creates the collection and its index on first use, then
// loads it for search.
func (s *MilvusIndex) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection '%s': %w", s.collection, err)
	}

	if !exists {
		schema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("content archive embeddings").
			WithField(entity.NewField().WithName(FieldEmbeddingID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(idMaxLength).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldContentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(idMaxLength)).
			WithField(entity.NewField().WithName(FieldContentType).WithDataType(entity.FieldTypeVarChar).WithMaxLength(idMaxLength)).
			WithField(entity.NewField().WithName(FieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(textMaxLength)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

		if err := s.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection '%s': %w", s.collection, err)
		}

		index, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to build index definition: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, index, false); err != nil {
			return fmt.Errorf("failed to create index on '%s': %w", FieldEmbedding, err)
		}
		s.log.Info(fmt.Sprintf("Created Milvus collection '%s' (dim=%d)", s.collection, s.dim))
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection '%s': %w", s.collection, err)
	}
	return nil
}

// Add embeds the text and inserts one row, returning the new embedding id.
func (s *MilvusIndex) Add(ctx context.Context, contentID, text string, metadata map[string]interface{}) (string, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", &models.IndexingError{ContentID: contentID, Err: err}
	}

	embeddingID := uuid.New().String()
	contentType := ""
	if ct, ok := metadata[FieldContentType].(string); ok {
		contentType = ct
	}
	if len(text) > textMaxLength {
		text = text[:textMaxLength]
	}

	idCol := entity.NewColumnVarChar(FieldEmbeddingID, []string{embeddingID})
	contentIDCol := entity.NewColumnVarChar(FieldContentID, []string{contentID})
	typeCol := entity.NewColumnVarChar(FieldContentType, []string{contentType})
	textCol := entity.NewColumnVarChar(FieldText, []string{text})
	vectorCol := entity.NewColumnFloatVector(FieldEmbedding, s.dim, [][]float32{vector})

	_, err = s.client.Insert(ctx, s.collection, "" /* default partition */, idCol, contentIDCol, typeCol, textCol, vectorCol)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to insert into Milvus: %v", err))
		return "", &models.IndexingError{ContentID: contentID, Err: err}
	}
	return embeddingID, nil
}

// Search embeds the query and runs a cosine similarity search with an
// optional metadata filter expression.
func (s *MilvusIndex) Search(ctx context.Context, query string, k int, filters map[string]interface{}) ([]models.SearchHit, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if k <= 0 {
		k = 5
	}

	filterExpr := buildFilterExpression(filters)
	searchParams, _ := entity.NewIndexIvfFlatSearchParam(10)
	outputFields := []string{FieldEmbeddingID, FieldContentID, FieldContentType, FieldText}

	s.log.Debug(fmt.Sprintf("Querying Milvus collection '%s' with filter: '%s'", s.collection, filterExpr))

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, filterExpr, outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.COSINE, k, searchParams,
	)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to search in Milvus: %v", err))
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var hits []models.SearchHit
	for _, res := range searchResults {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		idCol, ok := findColumn(FieldEmbeddingID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("Search result is missing the primary key field, skipping.")
			continue
		}
		idData := idCol.Data()

		var contentIDData, typeData, textData []string
		if col, ok := findColumn(FieldContentID).(*entity.ColumnVarChar); ok {
			contentIDData = col.Data()
		}
		if col, ok := findColumn(FieldContentType).(*entity.ColumnVarChar); ok {
			typeData = col.Data()
		}
		if col, ok := findColumn(FieldText).(*entity.ColumnVarChar); ok {
			textData = col.Data()
		}

		for i := 0; i < res.ResultCount; i++ {
			hit := models.SearchHit{
				EmbeddingID: idData[i],
				Similarity:  normalizeCosine(float64(res.Scores[i])),
			}
			if contentIDData != nil {
				hit.ContentID = contentIDData[i]
			}
			if textData != nil {
				hit.Text = textData[i]
			}
			if typeData != nil {
				hit.Metadata = map[string]interface{}{FieldContentType: typeData[i]}
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// Delete removes one row by primary key. Milvus treats deleting a missing
// key as a no-op, which matches the interface contract.
func (s *MilvusIndex) Delete(ctx context.Context, embeddingID string) error {
	expr := fmt.Sprintf(`%s == "%s"`, FieldEmbeddingID, embeddingID)
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("failed to delete from Milvus: %w", err)
	}
	return nil
}

// Update replaces a row as delete-then-add; the caller must persist the
// returned id.
func (s *MilvusIndex) Update(ctx context.Context, embeddingID, contentID, text string, metadata map[string]interface{}) (string, error) {
	if err := s.Delete(ctx, embeddingID); err != nil {
		return "", err
	}
	return s.Add(ctx, contentID, text, metadata)
}

// filterableFields are the metadata keys the collection stores as scalar
// columns. Anything else cannot appear in a filter expression.
var filterableFields = map[string]bool{
	FieldEmbeddingID: true,
	FieldContentID:   true,
	FieldContentType: true,
}

// buildFilterExpression creates a Milvus filter expression string from a map.
// Keys without a backing column are skipped; referencing a nonexistent field
// would fail the whole search.
func buildFilterExpression(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	var conditions []string
	for key, value := range filters {
		if !filterableFields[key] {
			continue
		}
		if v, ok := value.(string); ok {
			conditions = append(conditions, fmt.Sprintf(`%s == "%s"`, key, v))
		}
	}
	return strings.Join(conditions, " and ")
}

var _ interfaces.VectorIndex = (*MilvusIndex)(nil)
