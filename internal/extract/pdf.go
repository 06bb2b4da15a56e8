package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"waisdom/internal/models"
)

// FromPDF extracts text from a PDF document given as raw bytes. The page
// count and, when present, document-info title and author end up in the
// metadata.
func (s *Service) FromPDF(ctx context.Context, data []byte, sourceURL string) (*models.Extraction, error) {
	source := sourceURL
	if source == "" {
		source = "pdf upload"
	}

	if !mimetype.Detect(data).Is("application/pdf") {
		return nil, &models.ExtractionError{Source: source, Err: fmt.Errorf("data is not a PDF document")}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &models.ExtractionError{Source: source, Err: err}
	}

	numPages := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			s.log.Warn(fmt.Sprintf("failed to extract text from page %d of %s: %v", i, source, err))
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	text := strings.TrimSpace(sb.String())
	title, author := pdfInfo(reader)
	if title == "" {
		title = "Untitled PDF"
	}

	metadata := map[string]interface{}{
		"page_count": numPages,
		"word_count": len(strings.Fields(text)),
	}
	if sourceURL != "" {
		metadata["url"] = sourceURL
	}
	if author != "" {
		metadata["author"] = author
	}

	return &models.Extraction{
		Title:     title,
		Text:      text,
		Metadata:  metadata,
		Supported: true,
	}, nil
}

// pdfFromURL downloads a PDF and runs it through FromPDF.
func (s *Service) pdfFromURL(ctx context.Context, url string) (*models.Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &models.ExtractionError{Source: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &models.ExtractionError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.ExtractionError{Source: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, &models.ExtractionError{Source: url, Err: err}
	}

	return s.FromPDF(ctx, data, url)
}

// pdfInfo pulls the title and author out of the document-info dictionary.
func pdfInfo(reader *pdf.Reader) (title, author string) {
	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return "", ""
	}
	if v := info.Key("Title"); v.Kind() == pdf.String {
		title = strings.TrimSpace(v.Text())
	}
	if v := info.Key("Author"); v.Kind() == pdf.String {
		author = strings.TrimSpace(v.Text())
	}
	return title, author
}
