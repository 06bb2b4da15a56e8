package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"waisdom/internal/interfaces"
	"waisdom/internal/models"
	"waisdom/pkg/logger"
)

// ListOptions controls listing: pagination, sort field, and a filter map.
// A filter value may be a plain value (equality, or membership when the
// record field is a list) or a map of comparison operators
// ("gt", "lt", "gte", "lte", "eq") against a numeric field.
type ListOptions struct {
	Limit    int
	Offset   int
	SortBy   string
	SortDesc bool
	Filter   map[string]interface{}
}

// DefaultListOptions lists the 20 newest records.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 20, SortBy: "created_at", SortDesc: true}
}

// ContentStore is the record store: it owns durable records and keeps the
// vector index consistent with them. All reads and writes of records go
// through it.
type ContentStore struct {
	backend Backend
	index   interfaces.VectorIndex
	log     *logger.Logger
}

// New creates a content store over a persistence backend and a vector index.
func New(backend Backend, index interfaces.VectorIndex, log *logger.Logger) *ContentStore {
	return &ContentStore{backend: backend, index: index, log: log}
}

// Save persists a record. An unindexed record with a non-empty body is first
// offered to the vector index; an indexing failure is logged and the record
// still persists, so it remains listable and can be re-indexed on a later
// save. A persistence failure is fatal and reported as *PersistenceError.
func (s *ContentStore) Save(ctx context.Context, record *models.ContentRecord) error {
	if record.EmbeddingID == "" && record.Body != "" {
		metadata := map[string]interface{}{
			"title":          record.Title,
			"content_type":   string(record.ContentType),
			"priority_score": record.PriorityScore,
			"tags":           record.Tags,
			"created_at":     record.CreatedAt.Format(time.RFC3339),
		}
		if record.SourceURL != "" {
			metadata["source_url"] = record.SourceURL
		}

		embeddingID, err := s.index.Add(ctx, record.ID, record.Body, metadata)
		if err != nil {
			s.log.Error(fmt.Sprintf("Error adding to vector store: %v", err))
		} else {
			record.EmbeddingID = embeddingID
			s.log.Info(fmt.Sprintf("Added embedding for content: %s", record.ID))
		}
	}

	record.UpdatedAt = time.Now()
	if err := s.backend.Write(ctx, record); err != nil {
		return &models.PersistenceError{RecordID: record.ID, Err: err}
	}
	s.log.Info(fmt.Sprintf("Saved content item: %s", record.ID))
	return nil
}

// Get loads a record by id and records the access: the last-accessed
// timestamp is bumped and the record re-saved. A failed re-save is logged
// but does not fail the read. An unknown id returns (nil, nil).
func (s *ContentStore) Get(ctx context.Context, id string) (*models.ContentRecord, error) {
	record, err := s.backend.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		s.log.Warn(fmt.Sprintf("Content item not found: %s", id))
		return nil, nil
	}

	record.Touch()
	if err := s.Save(ctx, record); err != nil {
		s.log.Error(fmt.Sprintf("Failed to record access for %s: %v", id, err))
	}
	return record, nil
}

// List returns records matching the options. It is a full scan: the archive
// is single-user sized and both backends hand back everything cheaply.
func (s *ContentStore) List(ctx context.Context, opts ListOptions) ([]*models.ContentRecord, error) {
	all, err := s.backend.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*models.ContentRecord, 0, len(all))
	for _, record := range all {
		if matchesFilter(record, opts.Filter) {
			records = append(records, record)
		}
	}

	sortRecords(records, opts.SortBy, opts.SortDesc)

	if opts.Offset >= len(records) {
		return []*models.ContentRecord{}, nil
	}
	records = records[opts.Offset:]
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records, nil
}

// Delete removes a record and its index entry. It reports whether a record
// existed. An index-entry failure is logged and the record is removed anyway;
// a dangling index entry is dropped later when a search hit fails to hydrate.
func (s *ContentStore) Delete(ctx context.Context, id string) (bool, error) {
	record, err := s.backend.Read(ctx, id)
	if err != nil {
		return false, err
	}
	if record == nil {
		s.log.Warn(fmt.Sprintf("Cannot delete: Content item not found: %s", id))
		return false, nil
	}

	if record.EmbeddingID != "" {
		if err := s.index.Delete(ctx, record.EmbeddingID); err != nil {
			s.log.Error(fmt.Sprintf("Error deleting embedding for %s: %v", id, err))
		}
	}

	existed, err := s.backend.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if existed {
		s.log.Info(fmt.Sprintf("Deleted content item: %s", id))
	}
	return existed, nil
}

// SearchContent runs a similarity search and hydrates each hit with the
// display fields of its record. Hydration goes through Get, so searching
// counts as accessing the records it returns. Hits whose record no longer
// exists are dropped.
func (s *ContentStore) SearchContent(ctx context.Context, query string, n int, filters map[string]interface{}) ([]models.SearchHit, error) {
	hits, err := s.index.Search(ctx, query, n, filters)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.SearchHit, 0, len(hits))
	for _, hit := range hits {
		record, err := s.Get(ctx, hit.ContentID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		hit.Title = record.Title
		hit.Summary = record.Summary
		hit.ContentType = record.ContentType
		hit.PriorityScore = record.PriorityScore
		hit.Tags = record.Tags
		hit.Actions = record.Actions
		hit.CreatedAt = record.CreatedAt
		enriched = append(enriched, hit)
	}
	return enriched, nil
}

// DueReminders returns every record whose reminder is due at or before now.
// Reminders are not cleared on read: delivery is at-least-once and a record
// keeps coming back until it is deleted or its reminder removed.
func (s *ContentStore) DueReminders(ctx context.Context, now time.Time) ([]*models.ContentRecord, error) {
	all, err := s.backend.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	var due []*models.ContentRecord
	for _, record := range all {
		if record.ReminderDueAt != nil && !record.ReminderDueAt.After(now) {
			due = append(due, record)
		}
	}
	return due, nil
}

// matchesFilter applies a filter map to a record. Unknown field names never
// match, which makes a typo filter an empty result instead of a full listing.
func matchesFilter(record *models.ContentRecord, filter map[string]interface{}) bool {
	for key, want := range filter {
		value, ok := fieldValue(record, key)
		if !ok {
			return false
		}

		switch w := want.(type) {
		case map[string]interface{}:
			number, ok := toFloat(value)
			if !ok || !matchesComparison(number, w) {
				return false
			}
		default:
			if list, ok := value.([]string); ok {
				if s, ok := want.(string); ok {
					if !contains(list, s) {
						return false
					}
					continue
				}
			}
			if fmt.Sprintf("%v", value) != fmt.Sprintf("%v", want) {
				return false
			}
		}
	}
	return true
}

// matchesComparison evaluates {"gt": x, "lte": y, ...} operators against a
// numeric field. An unknown operator fails the match.
func matchesComparison(value float64, ops map[string]interface{}) bool {
	for op, raw := range ops {
		bound, ok := toFloat(raw)
		if !ok {
			return false
		}
		switch op {
		case "gt":
			if !(value > bound) {
				return false
			}
		case "lt":
			if !(value < bound) {
				return false
			}
		case "gte":
			if !(value >= bound) {
				return false
			}
		case "lte":
			if !(value <= bound) {
				return false
			}
		case "eq":
			if value != bound {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// fieldValue resolves a filterable or sortable field by its wire name.
func fieldValue(record *models.ContentRecord, name string) (interface{}, bool) {
	switch name {
	case "id":
		return record.ID, true
	case "title":
		return record.Title, true
	case "content_type":
		return string(record.ContentType), true
	case "source_url":
		return record.SourceURL, true
	case "summary":
		return record.Summary, true
	case "priority_score":
		return record.PriorityScore, true
	case "tags":
		return record.Tags, true
	case "actions":
		return record.Actions, true
	case "embedding_id":
		return record.EmbeddingID, true
	default:
		return nil, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// sortRecords orders records by a named field. An unknown field leaves the
// input order untouched.
func sortRecords(records []*models.ContentRecord, sortBy string, desc bool) {
	var less func(a, b *models.ContentRecord) bool
	switch sortBy {
	case "created_at", "":
		less = func(a, b *models.ContentRecord) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated_at":
		less = func(a, b *models.ContentRecord) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "priority_score":
		less = func(a, b *models.ContentRecord) bool { return a.PriorityScore < b.PriorityScore }
	case "title":
		less = func(a, b *models.ContentRecord) bool { return a.Title < b.Title }
	default:
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}
