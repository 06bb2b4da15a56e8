package models

import "time"

// Extraction is the uniform result contract of the enrichment gateway:
// whatever the source kind, extraction yields a title, normalized text, and
// source-specific metadata. Supported is false for kinds that only produce
// placeholder text (tweets, Notion pages); the pipeline refuses to persist
// those.
type Extraction struct {
	Title     string
	Text      string
	Metadata  map[string]interface{}
	Supported bool
}

// Insight is the structured output of the summarization pass.
type Insight struct {
	Summary            string   `json:"summary"`
	KeyPoints          []string `json:"key_points"`
	ActionableInsights []string `json:"actionable_insights"`
	PriorityScore      float64  `json:"priority_score"`
	Tags               []string `json:"tags"`
}

// SearchHit is one similarity-search result, hydrated with the display
// fields of the underlying record.
type SearchHit struct {
	EmbeddingID string                 `json:"embedding_id"`
	ContentID   string                 `json:"content_id"`
	Text        string                 `json:"text"`
	Similarity  float64                `json:"similarity"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`

	// Filled in from the record store after the index lookup.
	Title         string      `json:"title"`
	Summary       string      `json:"summary,omitempty"`
	ContentType   ContentType `json:"content_type"`
	PriorityScore float64     `json:"priority_score,omitempty"`
	Tags          []string    `json:"tags"`
	Actions       []string    `json:"actions"`
	CreatedAt     time.Time   `json:"created_at"`
}

// DigestItemKind tells reminders apart from recent high-priority items in a
// daily digest.
type DigestItemKind string

const (
	DigestItemReminder DigestItemKind = "reminder"
	DigestItemRecent   DigestItemKind = "recent"
)

// DigestItem is one entry of the merged daily digest.
type DigestItem struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary,omitempty"`
	Kind          DigestItemKind `json:"type"`
	PriorityScore float64        `json:"priority_score,omitempty"`
	Tags          []string       `json:"tags"`
	Actions       []string       `json:"actions"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Recommendation is one item of the insight gateway's revisit ranking. The
// gateway owns both the ordering and the reasoning text.
type Recommendation struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// RecordDigest is the compact projection of a record handed to the insight
// gateway when asking for recommendations.
type RecordDigest struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary,omitempty"`
	Tags          []string `json:"tags"`
	PriorityScore float64  `json:"priority_score,omitempty"`
}

// ReminderNote is the projection delivered to reminder observers.
type ReminderNote struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary,omitempty"`
	PriorityScore float64   `json:"priority_score,omitempty"`
	Tags          []string  `json:"tags"`
	Actions       []string  `json:"actions"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProcessResult reports how far a submission got: the record always persists
// on success, but enrichment and indexing are best-effort and may have been
// skipped after a downstream failure.
type ProcessResult struct {
	Record   *ContentRecord `json:"record"`
	Enriched bool           `json:"enriched"`
	Indexed  bool           `json:"indexed"`
}
