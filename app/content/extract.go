package content

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/go-shiori/go-readability"
)

// htmlBlocks extracts the article from a full HTML page before building
// blocks. Fragments, and pages readability cannot handle, are used as is.
func htmlBlocks(data []byte) ([]Block, error) {
	html := string(data)

	if bytes.Contains(bytes.ToLower(data), []byte("<html")) {
		extracted, err := extractArticle(data)
		if err != nil {
			slog.Debug("Readability extraction skipped", "error", err)
		} else {
			html = extracted
		}
	}

	return markupBlocks(html)
}

func extractArticle(data []byte) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.Content))

	return article.Content, nil
}
