package extract

import (
	"net/url"
	"path"
	"strings"

	"waisdom/internal/models"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true, "webp": true,
}

// DetectContentType classifies a submission by URL shape or file extension.
// Known domains win over extensions; with neither signal the result is
// "other".
func (s *Service) DetectContentType(rawURL, fileExtension string) models.ContentType {
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		if err == nil {
			domain := strings.ToLower(u.Host)
			lowerPath := strings.ToLower(u.Path)
			switch {
			case strings.Contains(domain, "twitter.com"), strings.Contains(domain, "x.com"):
				return models.ContentTypeTweet
			case strings.Contains(domain, "notion.so"):
				return models.ContentTypeNotion
			case strings.HasSuffix(lowerPath, ".pdf"):
				return models.ContentTypePDF
			case imageExtensions[strings.TrimPrefix(path.Ext(lowerPath), ".")]:
				return models.ContentTypeImage
			default:
				return models.ContentTypeArticle
			}
		}
	}

	if fileExtension != "" {
		ext := strings.ToLower(strings.TrimPrefix(fileExtension, "."))
		switch {
		case ext == "pdf":
			return models.ContentTypePDF
		case imageExtensions[ext]:
			return models.ContentTypeImage
		case ext == "txt" || ext == "md" || ext == "markdown":
			return models.ContentTypeText
		}
	}

	return models.ContentTypeOther
}
