package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"waisdom/internal/models"
	"waisdom/pkg/logger"
)

type fakeGenerator struct {
	output   string
	err      error
	lastUser string
}

func (f *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	f.lastUser = user
	return f.output, f.err
}

func TestSummarizeParsesJSON(t *testing.T) {
	gen := &fakeGenerator{output: `{"summary": "short", "key_points": ["a"], "actionable_insights": ["b"], "priority_score": 8.5, "tags": ["go", "testing"]}`}
	g := NewGateway(gen, logger.New("test"))

	insight, err := g.Summarize(context.Background(), "some body", map[string]interface{}{"word_count": 2})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if insight.Summary != "short" || insight.PriorityScore != 8.5 {
		t.Errorf("insight = %+v", insight)
	}
	if len(insight.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", insight.Tags)
	}
	if !strings.Contains(gen.lastUser, "some body") {
		t.Error("prompt must contain the content")
	}
}

func TestSummarizeStripsCodeFence(t *testing.T) {
	gen := &fakeGenerator{output: "```json\n{\"summary\": \"fenced\", \"priority_score\": 5}\n```"}
	g := NewGateway(gen, logger.New("test"))

	insight, err := g.Summarize(context.Background(), "body", nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if insight.Summary != "fenced" {
		t.Errorf("summary = %q", insight.Summary)
	}
}

func TestSummarizeClampsPriority(t *testing.T) {
	gen := &fakeGenerator{output: `{"summary": "s", "priority_score": 14}`}
	g := NewGateway(gen, logger.New("test"))

	insight, err := g.Summarize(context.Background(), "body", nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if insight.PriorityScore != models.MaxPriorityScore {
		t.Errorf("priority = %v, want clamped to %v", insight.PriorityScore, models.MaxPriorityScore)
	}
}

func TestSummarizeTruncatesLongContent(t *testing.T) {
	gen := &fakeGenerator{output: `{"summary": "s", "priority_score": 5}`}
	g := NewGateway(gen, logger.New("test"))

	long := strings.Repeat("x", maxContentLength+5000)
	if _, err := g.Summarize(context.Background(), long, nil); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.Contains(gen.lastUser, "[Content truncated]") {
		t.Error("over-long content must be truncated with a marker")
	}
	if len(gen.lastUser) > maxContentLength+1000 {
		t.Errorf("prompt length %d, truncation did not happen", len(gen.lastUser))
	}
}

func TestSummarizeTruncatesOnRuneBoundary(t *testing.T) {
	gen := &fakeGenerator{output: `{"summary": "s", "priority_score": 5}`}
	g := NewGateway(gen, logger.New("test"))

	// Three-byte runes never divide the byte cap evenly, so a byte-index cut
	// would split one and corrupt the prompt.
	long := strings.Repeat("語", maxContentLength)
	if _, err := g.Summarize(context.Background(), long, nil); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !utf8.ValidString(gen.lastUser) {
		t.Error("truncated prompt is not valid UTF-8")
	}
	if !strings.Contains(gen.lastUser, "[Content truncated]") {
		t.Error("over-long content must be truncated with a marker")
	}
}

func TestTruncateOnRune(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "h"},
		{"語語", 4, "語"},
		{"語", 1, ""},
	}
	for _, c := range cases {
		if got := truncateOnRune(c.in, c.n); got != c.want {
			t.Errorf("truncateOnRune(%q, %d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestSummarizeBadOutput(t *testing.T) {
	gen := &fakeGenerator{output: "certainly! here is your summary..."}
	g := NewGateway(gen, logger.New("test"))

	if _, err := g.Summarize(context.Background(), "body", nil); err == nil {
		t.Fatal("unparseable model output must surface as an error")
	}
}

func TestSummarizeGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	g := NewGateway(gen, logger.New("test"))

	if _, err := g.Summarize(context.Background(), "body", nil); err == nil {
		t.Fatal("generator failure must surface as an error")
	}
}

func TestAnswerFormatsContext(t *testing.T) {
	gen := &fakeGenerator{output: "  the answer  "}
	g := NewGateway(gen, logger.New("test"))

	hits := []models.SearchHit{
		{Title: "Doc One", Text: strings.Repeat("y", docSnippetLength+100)},
		{Text: "no title here"},
	}
	answer, err := g.Answer(context.Background(), "what?", hits)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q, want trimmed model output", answer)
	}
	if !strings.Contains(gen.lastUser, "Doc One") {
		t.Error("prompt must include document titles")
	}
	if !strings.Contains(gen.lastUser, "Untitled") {
		t.Error("missing titles must fall back to Untitled")
	}
	if strings.Contains(gen.lastUser, strings.Repeat("y", docSnippetLength+1)) {
		t.Error("document snippets must be truncated")
	}
}

func TestRecommendParsesJSONArray(t *testing.T) {
	gen := &fakeGenerator{output: `[{"id": "r1", "title": "T", "reason": "because"}]`}
	g := NewGateway(gen, logger.New("test"))

	recent := []models.RecordDigest{{ID: "r1", Title: "T", Tags: []string{"go"}}}
	recs, err := g.Recommend(context.Background(), []string{"AI"}, recent)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "r1" || recs[0].Reason != "because" {
		t.Errorf("recommendations = %+v", recs)
	}
	if !strings.Contains(gen.lastUser, "AI") {
		t.Error("prompt must include the interests")
	}
}

func TestRecommendCapsRecentItems(t *testing.T) {
	gen := &fakeGenerator{output: `[]`}
	g := NewGateway(gen, logger.New("test"))

	recent := make([]models.RecordDigest, recommendRecentLimit+3)
	for i := range recent {
		recent[i] = models.RecordDigest{ID: "id", Title: "t"}
	}
	if _, err := g.Recommend(context.Background(), nil, recent); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if strings.Count(gen.lastUser, "--- Recent Item") != recommendRecentLimit {
		t.Errorf("prompt lists %d items, want %d", strings.Count(gen.lastUser, "--- Recent Item"), recommendRecentLimit)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n[1, 2]\n```", `[1, 2]`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, c := range cases {
		if got := stripCodeFence(c.in); got != c.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
