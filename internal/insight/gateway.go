package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"waisdom/internal/interfaces"
	"waisdom/internal/models"
	"waisdom/pkg/logger"
)

const (
	// maxContentLength caps the text sent to the model to stay inside the
	// context window. Longer bodies are truncated, not chunked.
	maxContentLength = 14000
	// docSnippetLength caps each retrieved document quoted in a question
	// answering prompt.
	docSnippetLength = 500
	// recommendRecentLimit caps how many recent items are shown to the
	// recommendation prompt.
	recommendRecentLimit = 5
)

const summarizeSystemPrompt = `You are an expert research assistant. You are analyzing content to extract valuable information. For the content provided, create a concise summary, extract key points, and identify actionable insights that could be useful for the researcher.

Also provide a priority score from 1-10, where:
- 10: Groundbreaking/essential content that represents unique, highly actionable insights
- 7-9: Very important content with novel information and clear applications
- 4-6: Moderately useful content with some interesting points
- 1-3: Basic/common information with limited novelty or application

Finally, generate 3-7 relevant tags that categorize the content.

Respond with a single JSON object and nothing else, using exactly these keys:
{"summary": string, "key_points": [string], "actionable_insights": [string], "priority_score": number, "tags": [string]}`

const answerSystemPrompt = `You are a knowledgeable research assistant with access to a personal knowledge base. Answer the user's question based on the relevant content provided. Be concise and specific. If the provided content doesn't contain enough information to answer the question confidently, acknowledge the limitations of your knowledge.

If appropriate, include specific quotes or references from the content to support your answer.`

const recommendSystemPrompt = `You are a personalized content recommendation system. Based on the user's interests and recent activity, recommend which content from their library they should revisit or prioritize. Provide a brief reason for each recommendation.

Respond with a single JSON array and nothing else, where each element has exactly these keys:
{"id": string, "title": string, "reason": string}

Use the id field of the item being recommended.`

// Gateway turns raw record text into structured insights through a language
// model provider. It owns the prompts and the parsing of the model output.
type Gateway struct {
	generator Generator
	log       *logger.Logger
}

// NewGateway creates an insight gateway over the given provider.
func NewGateway(generator Generator, log *logger.Logger) *Gateway {
	return &Gateway{generator: generator, log: log}
}

// Summarize runs the analysis pass over a record body and returns the parsed
// insight. Errors are wrapped so the pipeline can degrade instead of failing
// the whole submission.
func (g *Gateway) Summarize(ctx context.Context, text string, metadata map[string]interface{}) (*models.Insight, error) {
	if len(text) > maxContentLength {
		g.log.Warn(fmt.Sprintf("Content truncated from %d characters to %d", len(text), maxContentLength))
		text = truncateOnRune(text, maxContentLength) + "...[Content truncated]"
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		metaJSON = []byte("{}")
	}
	user := fmt.Sprintf("Here is the content to analyze:\n%s\n\nAdditional metadata: %s\n", text, metaJSON)

	raw, err := g.generator.Generate(ctx, summarizeSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	var insight models.Insight
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &insight); err != nil {
		return nil, fmt.Errorf("failed to parse summary output: %w", err)
	}
	insight.PriorityScore = models.ClampPriority(insight.PriorityScore)
	return &insight, nil
}

// Answer generates an answer to a question grounded in the retrieved hits.
func (g *Gateway) Answer(ctx context.Context, question string, contextDocs []models.SearchHit) (string, error) {
	var sb strings.Builder
	for i, doc := range contextDocs {
		title := doc.Title
		if title == "" {
			title = "Untitled"
		}
		snippet := doc.Text
		if len(snippet) > docSnippetLength {
			snippet = truncateOnRune(snippet, docSnippetLength) + "..."
		}
		fmt.Fprintf(&sb, "\n--- Document %d ---\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", title)
		fmt.Fprintf(&sb, "Content: %s\n", snippet)
	}

	user := fmt.Sprintf("Question: %s\n\nHere are relevant documents from my knowledge base:\n%s\nPlease provide a concise, helpful answer based on this information.\n", question, sb.String())

	answer, err := g.generator.Generate(ctx, answerSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Recommend asks the model which saved items deserve a revisit given the
// user's interests and recent activity.
func (g *Gateway) Recommend(ctx context.Context, interests []string, recent []models.RecordDigest) ([]models.Recommendation, error) {
	if len(recent) > recommendRecentLimit {
		recent = recent[:recommendRecentLimit]
	}

	var sb strings.Builder
	for i, item := range recent {
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		summary := item.Summary
		if summary == "" {
			summary = "No summary available"
		}
		fmt.Fprintf(&sb, "\n--- Recent Item %d ---\n", i+1)
		fmt.Fprintf(&sb, "ID: %s\n", item.ID)
		fmt.Fprintf(&sb, "Title: %s\n", title)
		fmt.Fprintf(&sb, "Summary: %s\n", summary)
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(item.Tags, ", "))
	}

	user := fmt.Sprintf("User Interests: %s\n\nRecent Activity:\n%s\nWhat content should I prioritize revisiting? Provide 3-5 recommendations with reasons.\n", strings.Join(interests, ", "), sb.String())

	raw, err := g.generator.Generate(ctx, recommendSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}

	var recommendations []models.Recommendation
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &recommendations); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation output: %w", err)
	}
	return recommendations, nil
}

// truncateOnRune cuts s to at most n bytes, backing the cut up so it never
// lands inside a multi-byte rune.
func truncateOnRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripCodeFence removes a surrounding markdown code fence, which models add
// around JSON output despite instructions not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ interfaces.InsightGateway = (*Gateway)(nil)
