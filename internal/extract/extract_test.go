package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"waisdom/internal/models"
	"waisdom/pkg/logger"
)

func newTestService() *Service {
	return NewService(logger.New("test"))
}

func TestDetectContentType(t *testing.T) {
	s := newTestService()

	cases := []struct {
		url  string
		ext  string
		want models.ContentType
	}{
		{"https://twitter.com/user/status/123", "", models.ContentTypeTweet},
		{"https://x.com/user/status/123", "", models.ContentTypeTweet},
		{"https://www.notion.so/workspace/page", "", models.ContentTypeNotion},
		{"https://example.com/paper.pdf", "", models.ContentTypePDF},
		{"https://example.com/photo.PNG", "", models.ContentTypeImage},
		{"https://example.com/blog/post", "", models.ContentTypeArticle},
		{"", "pdf", models.ContentTypePDF},
		{"", ".jpeg", models.ContentTypeImage},
		{"", "md", models.ContentTypeText},
		{"", "exe", models.ContentTypeOther},
		{"", "", models.ContentTypeOther},
	}
	for _, c := range cases {
		if got := s.DetectContentType(c.url, c.ext); got != c.want {
			t.Errorf("DetectContentType(%q, %q) = %q, want %q", c.url, c.ext, got, c.want)
		}
	}
}

func TestFromURLUnsupportedKinds(t *testing.T) {
	s := newTestService()

	for _, url := range []string{
		"https://twitter.com/user/status/123",
		"https://www.notion.so/workspace/page",
	} {
		extraction, err := s.FromURL(context.Background(), url)
		if err != nil {
			t.Fatalf("FromURL(%q) error = %v", url, err)
		}
		if extraction.Supported {
			t.Errorf("FromURL(%q) must report an unsupported source", url)
		}
		if extraction.Text == "" {
			t.Errorf("FromURL(%q) must still carry placeholder text", url)
		}
	}
}

func TestFromTextTitle(t *testing.T) {
	s := newTestService()

	extraction, err := s.FromText(context.Background(), "Shopping list\nmilk\neggs", "chat")
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	if !extraction.Supported {
		t.Error("plain text must be a supported kind")
	}
	if extraction.Title != "Shopping list" {
		t.Errorf("title = %q, want first line", extraction.Title)
	}
	if extraction.Metadata["source"] != "chat" {
		t.Errorf("metadata source = %v, want 'chat'", extraction.Metadata["source"])
	}
	if extraction.Metadata["line_count"] != 3 {
		t.Errorf("line_count = %v, want 3", extraction.Metadata["line_count"])
	}
}

func TestFromTextLongTitleTruncated(t *testing.T) {
	s := newTestService()

	long := strings.Repeat("a", 120)
	extraction, err := s.FromText(context.Background(), long, "")
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	if len(extraction.Title) != titleLimit {
		t.Errorf("title length = %d, want %d", len(extraction.Title), titleLimit)
	}
	if !strings.HasSuffix(extraction.Title, "...") {
		t.Errorf("truncated title %q must end with ellipsis", extraction.Title)
	}
}

func TestFromTextMultibyteTitleTruncated(t *testing.T) {
	s := newTestService()

	long := strings.Repeat("知", 120)
	extraction, err := s.FromText(context.Background(), long, "")
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	if !utf8.ValidString(extraction.Title) {
		t.Errorf("truncated title %q is not valid UTF-8", extraction.Title)
	}
	if got := utf8.RuneCountInString(extraction.Title); got != titleLimit {
		t.Errorf("title rune count = %d, want %d", got, titleLimit)
	}
	if !strings.HasSuffix(extraction.Title, "...") {
		t.Errorf("truncated title %q must end with ellipsis", extraction.Title)
	}
}

func TestFromTextEmpty(t *testing.T) {
	s := newTestService()

	extraction, err := s.FromText(context.Background(), "   \n", "")
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	if extraction.Title != "Untitled Text" {
		t.Errorf("title = %q, want fallback", extraction.Title)
	}
}

func TestFromPDFRejectsNonPDF(t *testing.T) {
	s := newTestService()

	_, err := s.FromPDF(context.Background(), []byte("not a pdf"), "")
	if err == nil {
		t.Fatal("expected an error for non-PDF data")
	}
	var extractionErr *models.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("error = %T, want *models.ExtractionError", err)
	}
}
