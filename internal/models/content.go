package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType classifies the source a record was extracted from.
type ContentType string

const (
	ContentTypeArticle ContentType = "article"
	ContentTypeTweet   ContentType = "tweet"
	ContentTypePDF     ContentType = "pdf"
	ContentTypeImage   ContentType = "image"
	ContentTypeText    ContentType = "text"
	ContentTypeNotion  ContentType = "notion"
	ContentTypeOther   ContentType = "other"
)

// Priority score domain. A zero PriorityScore means "not scored yet".
const (
	MinPriorityScore = 1.0
	MaxPriorityScore = 10.0

	// LowDefaultPriority is assigned when the insight pass fails, so the
	// record still sorts below everything that was actually scored high.
	LowDefaultPriority = 1.0
)

// ContentRecord is the durable unit representing one saved piece of content
// plus its derived insights. The same struct round-trips through the file
// store (json tags) and the Mongo store (bson tags); both formats are
// field-named so new optional fields can be added without breaking old
// stored records.
type ContentRecord struct {
	ID          string      `json:"id" bson:"_id"`
	Title       string      `json:"title" bson:"title"`
	Body        string      `json:"content" bson:"content"`
	ContentType ContentType `json:"content_type" bson:"content_type"`
	SourceURL   string      `json:"source_url,omitempty" bson:"source_url,omitempty"`

	// Extraction-specific facts (word count, author, page count, ...).
	// Opaque to the pipeline beyond pass-through.
	Metadata map[string]interface{} `json:"metadata" bson:"metadata"`

	// Insight fields. Empty / zero until the enrichment pass succeeds.
	Summary       string   `json:"summary,omitempty" bson:"summary,omitempty"`
	PriorityScore float64  `json:"priority_score,omitempty" bson:"priority_score,omitempty"`
	Actions       []string `json:"actions" bson:"actions"`
	Tags          []string `json:"tags" bson:"tags"`

	// EmbeddingID links the record to its vector-index entry. Empty means
	// not indexed yet, or indexing failed.
	EmbeddingID string `json:"embedding_id,omitempty" bson:"embedding_id,omitempty"`

	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
	LastAccessedAt *time.Time `json:"last_accessed,omitempty" bson:"last_accessed,omitempty"`
	ReminderDueAt  *time.Time `json:"reminder_date,omitempty" bson:"reminder_date,omitempty"`
}

// NewContentRecord builds an in-memory record with a fresh identifier.
// The record is not visible to listing or search until it is saved.
func NewContentRecord(title, body string, contentType ContentType, sourceURL string, metadata map[string]interface{}) *ContentRecord {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	now := time.Now()
	return &ContentRecord{
		ID:          uuid.New().String(),
		Title:       title,
		Body:        body,
		ContentType: contentType,
		SourceURL:   sourceURL,
		Metadata:    metadata,
		Actions:     []string{},
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch bumps the last-accessed timestamp to now.
func (r *ContentRecord) Touch() {
	now := time.Now()
	r.LastAccessedAt = &now
}

// SetReminder schedules a reminder at now + offset. It is idempotent: a
// reminder that is already set is left unchanged, so re-finalizing a record
// does not push its due date out.
func (r *ContentRecord) SetReminder(offset time.Duration) {
	if r.ReminderDueAt != nil {
		return
	}
	due := time.Now().Add(offset)
	r.ReminderDueAt = &due
}

// HasPriority reports whether the record was scored by the insight pass.
func (r *ContentRecord) HasPriority() bool {
	return r.PriorityScore != 0
}

// ClampPriority forces a score into the valid [1.0, 10.0] domain.
func ClampPriority(score float64) float64 {
	if score < MinPriorityScore {
		return MinPriorityScore
	}
	if score > MaxPriorityScore {
		return MaxPriorityScore
	}
	return score
}
