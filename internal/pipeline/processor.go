package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"waisdom/internal/config"
	"waisdom/internal/interfaces"
	"waisdom/internal/models"
	"waisdom/internal/store"
	"waisdom/pkg/logger"
)

const (
	defaultSearchResults = 5
	askContextResults    = 3

	// digestPriorityFloor selects which recent records qualify for the daily
	// digest. It is deliberately below the reminder threshold so the digest
	// also surfaces solid-but-not-urgent material.
	digestPriorityFloor = 6.0

	noRelevantInfoAnswer = "I don't have any relevant information to answer that question."
)

// Processor is the content pipeline: it drives a submission through
// extraction, insight generation, reminder scheduling, and persistence, and
// serves the retrieval operations on top of the store.
type Processor struct {
	store     *store.ContentStore
	extractor interfaces.Extractor
	gateway   interfaces.InsightGateway
	cfg       config.AssistantConfig
	log       *logger.Logger
}

// New wires a processor from its collaborators.
func New(st *store.ContentStore, extractor interfaces.Extractor, gateway interfaces.InsightGateway, cfg config.AssistantConfig, log *logger.Logger) *Processor {
	return &Processor{
		store:     st,
		extractor: extractor,
		gateway:   gateway,
		cfg:       cfg,
		log:       log,
	}
}

// ProcessURL ingests a URL submission. Extraction failure aborts with nothing
// persisted; source kinds without a real extractor abort with
// *UnsupportedSourceError rather than archiving placeholder text.
func (p *Processor) ProcessURL(ctx context.Context, url string) (*models.ProcessResult, error) {
	p.log.Info(fmt.Sprintf("Processing URL: %s", url))

	extraction, err := p.extractor.FromURL(ctx, url)
	if err != nil {
		return nil, err
	}
	contentType := p.extractor.DetectContentType(url, "")
	if !extraction.Supported {
		return nil, &models.UnsupportedSourceError{ContentType: contentType, Source: url}
	}

	record := models.NewContentRecord(extraction.Title, extraction.Text, contentType, url, extraction.Metadata)
	return p.finalize(ctx, record)
}

// ProcessText ingests a plain text snippet.
func (p *Processor) ProcessText(ctx context.Context, text, source string) (*models.ProcessResult, error) {
	p.log.Info(fmt.Sprintf("Processing text: %s...", previewOf(text)))

	extraction, err := p.extractor.FromText(ctx, text, source)
	if err != nil {
		return nil, err
	}

	record := models.NewContentRecord(extraction.Title, extraction.Text, models.ContentTypeText, "", extraction.Metadata)
	return p.finalize(ctx, record)
}

// ProcessPDF ingests an uploaded PDF document.
func (p *Processor) ProcessPDF(ctx context.Context, data []byte, filename, sourceURL string) (*models.ProcessResult, error) {
	p.log.Info(fmt.Sprintf("Processing PDF: %s", filename))

	extraction, err := p.extractor.FromPDF(ctx, data, sourceURL)
	if err != nil {
		return nil, err
	}
	if filename != "" {
		extraction.Metadata["filename"] = filename
	}

	record := models.NewContentRecord(extraction.Title, extraction.Text, models.ContentTypePDF, sourceURL, extraction.Metadata)
	return p.finalize(ctx, record)
}

// previewOf shortens a submission for log lines, cutting on a rune boundary
// so the output stays valid UTF-8.
func previewOf(text string) string {
	const previewRunes = 50
	runes := []rune(text)
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes)
}

// finalize runs the insight pass and persists the record. The insight pass is
// best-effort: on failure the record is kept with the low default priority so
// the content itself is never lost. A reminder is scheduled when the score
// reaches the high-priority threshold. Only a persistence failure is fatal.
func (p *Processor) finalize(ctx context.Context, record *models.ContentRecord) (*models.ProcessResult, error) {
	enriched := false

	enrichCtx, cancel := context.WithTimeout(ctx, p.cfg.EnrichTimeout())
	insight, err := p.gateway.Summarize(enrichCtx, record.Body, record.Metadata)
	cancel()
	if err != nil {
		p.log.Error(fmt.Sprintf("Error processing content with LLM: %v", &models.EnrichmentError{RecordID: record.ID, Err: err}))
		record.PriorityScore = models.LowDefaultPriority
	} else {
		record.Summary = insight.Summary
		record.PriorityScore = models.ClampPriority(insight.PriorityScore)
		record.Actions = insight.ActionableInsights
		record.Tags = insight.Tags
		enriched = true
		p.log.Info(fmt.Sprintf("Successfully processed content with LLM: %s", record.ID))
	}

	if record.HasPriority() && record.PriorityScore >= p.cfg.HighPriorityThreshold {
		record.SetReminder(p.cfg.ReminderOffset())
	}

	if err := p.store.Save(ctx, record); err != nil {
		return nil, err
	}

	return &models.ProcessResult{
		Record:   record,
		Enriched: enriched,
		Indexed:  record.EmbeddingID != "",
	}, nil
}

// Search runs a similarity search over the archive.
func (p *Processor) Search(ctx context.Context, query string, n int) ([]models.SearchHit, error) {
	if n <= 0 {
		n = defaultSearchResults
	}
	return p.store.SearchContent(ctx, query, n, nil)
}

// Ask answers a question grounded in the archive. With no relevant content
// it short-circuits to a fixed answer instead of calling the model.
func (p *Processor) Ask(ctx context.Context, question string) (string, error) {
	hits, err := p.store.SearchContent(ctx, question, askContextResults, nil)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return noRelevantInfoAnswer, nil
	}
	return p.gateway.Answer(ctx, question, hits)
}

// DailyDigest merges due reminders with recent high-priority records, due
// reminders first, deduplicated, capped at limit.
func (p *Processor) DailyDigest(ctx context.Context, limit int) ([]models.DigestItem, error) {
	if limit <= 0 {
		limit = p.cfg.DigestLimit
	}

	var (
		recent    []*models.ContentRecord
		reminders []*models.ContentRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = p.store.List(gctx, store.ListOptions{
			Limit:    limit,
			SortBy:   "created_at",
			SortDesc: true,
			Filter: map[string]interface{}{
				"priority_score": map[string]interface{}{"gte": digestPriorityFloor},
			},
		})
		return err
	})
	g.Go(func() error {
		var err error
		reminders, err = p.store.DueReminders(gctx, time.Now())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.DigestItem, 0, limit)
	seen := make(map[string]bool)

	for _, record := range reminders {
		if len(items) >= limit {
			break
		}
		items = append(items, digestItem(record, models.DigestItemReminder))
		seen[record.ID] = true
	}
	for _, record := range recent {
		if len(items) >= limit {
			break
		}
		if seen[record.ID] {
			continue
		}
		items = append(items, digestItem(record, models.DigestItemRecent))
		seen[record.ID] = true
	}
	return items, nil
}

func digestItem(record *models.ContentRecord, kind models.DigestItemKind) models.DigestItem {
	return models.DigestItem{
		ID:            record.ID,
		Title:         record.Title,
		Summary:       record.Summary,
		Kind:          kind,
		PriorityScore: record.PriorityScore,
		Tags:          record.Tags,
		Actions:       record.Actions,
		CreatedAt:     record.CreatedAt,
	}
}

// Recommendations asks the insight gateway which saved items deserve a
// revisit, given the user's interests and a pool of recent records.
func (p *Processor) Recommendations(ctx context.Context, interests []string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = p.cfg.DigestLimit
	}

	recent, err := p.store.List(ctx, store.ListOptions{
		Limit:    p.cfg.RecommendPool,
		SortBy:   "created_at",
		SortDesc: true,
	})
	if err != nil {
		return nil, err
	}

	digests := make([]models.RecordDigest, 0, len(recent))
	for _, record := range recent {
		digests = append(digests, models.RecordDigest{
			ID:            record.ID,
			Title:         record.Title,
			Summary:       record.Summary,
			Tags:          record.Tags,
			PriorityScore: record.PriorityScore,
		})
	}

	recommendations, err := p.gateway.Recommend(ctx, interests, digests)
	if err != nil {
		return nil, err
	}
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

// List returns records matching the options without recording an access.
func (p *Processor) List(ctx context.Context, opts store.ListOptions) ([]*models.ContentRecord, error) {
	return p.store.List(ctx, opts)
}

// Get loads one record by id; the access is recorded.
func (p *Processor) Get(ctx context.Context, id string) (*models.ContentRecord, error) {
	return p.store.Get(ctx, id)
}

// Delete removes a record and its index entry.
func (p *Processor) Delete(ctx context.Context, id string) (bool, error) {
	return p.store.Delete(ctx, id)
}
