package models

import "fmt"

// The error taxonomy mirrors the failure semantics of the pipeline:
// extraction and persistence failures are caller-visible and abort the
// submission; enrichment and indexing failures are absorbed and the record
// persists in a degraded state.

// ExtractionError means raw content could not be turned into text. Nothing
// is persisted when it occurs.
type ExtractionError struct {
	Source string // URL, filename, or "text"
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("content extraction failed for %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// UnsupportedSourceError means the source kind has no real extractor yet
// (tweets and Notion pages). The submission is aborted rather than indexing
// placeholder text into the knowledge base.
type UnsupportedSourceError struct {
	ContentType ContentType
	Source      string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("source kind %q is not supported yet: %s", e.ContentType, e.Source)
}

// EnrichmentError means the insight pass failed or timed out. The record
// still persists with degraded fields.
type EnrichmentError struct {
	RecordID string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("insight enrichment failed for record %s: %v", e.RecordID, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// IndexingError means a vector-index write failed. The record persists
// without an embedding id and stays listable, just not searchable.
type IndexingError struct {
	ContentID string
	Err       error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("vector indexing failed for content %s: %v", e.ContentID, e.Err)
}

func (e *IndexingError) Unwrap() error { return e.Err }

// PersistenceError means the durable write failed. The submission must be
// reported as failed.
type PersistenceError struct {
	RecordID string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist record %s: %v", e.RecordID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
