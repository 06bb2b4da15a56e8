package extract

import (
	"context"
	"strings"

	"waisdom/internal/models"
)

// titleLimit is the longest title derived from a text snippet's first line.
const titleLimit = 50

// FromText wraps a plain text snippet. The title is derived from the first
// line, truncated when it is too long.
func (s *Service) FromText(ctx context.Context, text, source string) (*models.Extraction, error) {
	trimmed := strings.TrimSpace(text)
	lines := strings.Split(trimmed, "\n")

	title := "Untitled Text"
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		title = strings.TrimSpace(lines[0])
		// Truncate by runes so a multi-byte first line stays valid UTF-8.
		if runes := []rune(title); len(runes) > titleLimit {
			title = string(runes[:titleLimit-3]) + "..."
		}
	}

	metadata := map[string]interface{}{
		"word_count": len(strings.Fields(text)),
		"line_count": len(lines),
	}
	if source != "" {
		metadata["source"] = source
	}

	return &models.Extraction{
		Title:     title,
		Text:      text,
		Metadata:  metadata,
		Supported: true,
	}, nil
}
