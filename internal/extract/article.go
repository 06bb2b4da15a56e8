package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"waisdom/internal/models"
)

// article fetches a web page and converts its HTML to markdown text.
func (s *Service) article(ctx context.Context, url string) (*models.Extraction, error) {
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

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, &models.ExtractionError{Source: url, Err: err}
	}

	title, author, published := parseHTMLMeta(strings.NewReader(string(raw)))
	if title == "" {
		title = "Untitled Article"
	}

	text, err := htmltomarkdown.ConvertString(string(raw))
	if err != nil {
		return nil, &models.ExtractionError{Source: url, Err: err}
	}
	text = strings.TrimSpace(text)

	metadata := map[string]interface{}{
		"url":        url,
		"title":      title,
		"word_count": len(strings.Fields(text)),
	}
	if author != "" {
		metadata["author"] = author
	}
	if published != "" {
		metadata["published_date"] = published
	}

	return &models.Extraction{
		Title:     title,
		Text:      text,
		Metadata:  metadata,
		Supported: true,
	}, nil
}

// parseHTMLMeta scans an HTML document for the page title and the common
// author / published-time meta tags.
func parseHTMLMeta(body io.Reader) (title, author, published string) {
	z := html.NewTokenizer(body)
	var inTitle bool

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(title), author, published
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			tag := string(tn)
			if tag == "title" {
				inTitle = tt == html.StartTagToken
				continue
			}
			if tag != "meta" || !hasAttr {
				continue
			}
			var name, content string
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "name", "property":
					name = string(val)
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}
			switch name {
			case "author", "article:author":
				if author == "" {
					author = content
				}
			case "published_time", "article:published_time":
				if published == "" {
					published = content
				}
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			if string(tn) == "title" {
				inTitle = false
			}
		case html.TextToken:
			if inTitle {
				title += string(z.Text())
			}
		}
	}
}
