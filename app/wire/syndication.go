package wire

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

var _ Source = (*SyndicationReader)(nil)

// SyndicationReader reads RSS/Atom wires. Every entry is a story; image
// enclosures become embedded picture associations.
type SyndicationReader struct {
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	feedURL      string
	userAgent    string
}

func NewSyndicationReader(httpClient *http.Client, feedURL, userAgent string) *SyndicationReader {
	return &SyndicationReader{
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		feedURL:      feedURL,
		userAgent:    userAgent,
	}
}

func (s *SyndicationReader) FetchPage(ctx context.Context, pageURL string) *Page {
	pageURL = cmp.Or(pageURL, s.feedURL)

	data, err := s.get(ctx, pageURL)
	if err != nil {
		slog.Error("Feed fetch failed", "url", pageURL, "error", err)
		return &Page{}
	}

	feed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Error("Feed parse failed", "url", pageURL, "error", err)
		return &Page{}
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := normalizeEntry(entry)
		if item.SourceID == "" {
			slog.Warn("Feed entry without guid or link skipped", "title", entry.Title)
			continue
		}
		items = append(items, item)
	}

	slog.Info("Feed page fetched", "url", pageURL, "items", len(items))

	return &Page{Items: items}
}

// FetchItem is not supported: syndication associations are embedded in the entry.
func (s *SyndicationReader) FetchItem(ctx context.Context, uri string) (*Item, bool) {
	slog.Warn("Syndication feeds embed associations, fetch skipped", "url", uri)
	return nil, false
}

func (s *SyndicationReader) FetchContent(ctx context.Context, downloadURL string) ([]byte, error) {
	if downloadURL == "" {
		return nil, fmt.Errorf("item has no download URL")
	}
	return s.get(ctx, downloadURL)
}

func normalizeEntry(entry *gofeed.Item) Item {
	item := Item{
		Kind:           KindStory,
		Type:           "text",
		SourceID:       cmp.Or(entry.GUID, entry.Link),
		URI:            entry.Link,
		Headline:       entry.Title,
		FirstCreated:   entry.Published,
		VersionCreated: cmp.Or(entry.Updated, entry.Published),
		DownloadURL:    entry.Link,
		Description:    entry.Description,
		Body:           strings.TrimSpace(entry.Content),
	}

	item.Bylines = lo.FilterMap(entry.Authors, func(author *gofeed.Person, _ int) (Byline, bool) {
		if author == nil || strings.TrimSpace(author.Name) == "" {
			return Byline{}, false
		}
		return Byline{By: strings.TrimSpace(author.Name)}, true
	})

	var imageURLs []string
	for _, enclosure := range entry.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			imageURLs = append(imageURLs, enclosure.URL)
		}
	}
	if entry.Image != nil && entry.Image.URL != "" {
		imageURLs = append(imageURLs, entry.Image.URL)
	}

	for _, imageURL := range lo.Uniq(imageURLs) {
		picture := &Item{
			Kind:             KindPicture,
			Type:             "picture",
			SourceID:         imageURL,
			URI:              imageURL,
			Headline:         entry.Title,
			FirstCreated:     item.FirstCreated,
			VersionCreated:   item.VersionCreated,
			DownloadURL:      imageURL,
			OriginalFileName: path.Base(imageURL),
			Description:      entry.Title,
		}
		item.Associations = append(item.Associations, Association{
			SourceID: imageURL,
			Type:     "picture",
			URI:      imageURL,
			Headline: entry.Title,
			Item:     picture,
		})
	}

	return item
}

func (s *SyndicationReader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
