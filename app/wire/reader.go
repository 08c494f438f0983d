package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

var _ Source = (*Reader)(nil)

// Reader reads the JSON wire feed.
type Reader struct {
	httpClient *http.Client
	filterer   *Filterer
	feedURL    string
	apiKey     string
	query      string
	userAgent  string
}

func NewReader(httpClient *http.Client, feedURL, apiKey, query, userAgent string) *Reader {
	return &Reader{
		httpClient: httpClient,
		filterer:   NewFilterer(),
		feedURL:    feedURL,
		apiKey:     apiKey,
		query:      query,
		userAgent:  userAgent,
	}
}

func (r *Reader) FetchPage(ctx context.Context, pageURL string) *Page {
	params := url.Values{}
	if pageURL == "" {
		pageURL = r.feedURL
		if r.query != "" {
			params.Set("q", r.query)
		}
	}

	data, err := r.get(ctx, pageURL, params)
	if err != nil {
		slog.Error("Feed fetch failed", "url", pageURL, "error", err)
		return &Page{}
	}

	page := &Page{
		NextPage:         gjson.GetBytes(data, "data.next_page").String(),
		PreviousSequence: gjson.GetBytes(data, "params.seq").String(),
	}
	if _, seq, found := strings.Cut(page.NextPage, "seq="); found {
		page.Sequence, _, _ = strings.Cut(seq, "&")
	}

	var entries []gjson.Result
	if items := gjson.GetBytes(data, "data.items"); items.Exists() {
		entries = lo.Map(items.Array(), func(entry gjson.Result, _ int) gjson.Result {
			return entry.Get("item")
		})
	} else if single := gjson.GetBytes(data, "data.item"); single.Exists() {
		entries = []gjson.Result{single}
	}

	page.Items = r.filterer.Run(r.projectAll(entries))

	slog.Info("Feed page fetched",
		"url", pageURL,
		"items", len(page.Items),
		"previous_sequence", page.PreviousSequence,
		"sequence", page.Sequence,
		"next_page", page.NextPage)

	return page
}

func (r *Reader) FetchItem(ctx context.Context, uri string) (*Item, bool) {
	data, err := r.get(ctx, uri, url.Values{})
	if err != nil {
		slog.Error("Item fetch failed", "url", uri, "error", err)
		return nil, false
	}

	entry := gjson.GetBytes(data, "data.item")
	if !entry.Exists() {
		slog.Warn("Item response has no item", "url", uri)
		return nil, false
	}

	items := r.filterer.Run(r.projectAll([]gjson.Result{entry}))
	if len(items) == 0 {
		return nil, false
	}

	return &items[0], true
}

func (r *Reader) FetchContent(ctx context.Context, downloadURL string) ([]byte, error) {
	if downloadURL == "" {
		return nil, fmt.Errorf("item has no download URL")
	}
	return r.get(ctx, downloadURL, url.Values{})
}

func (r *Reader) projectAll(entries []gjson.Result) []Item {
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		item := projectItem(entry)
		if item.SourceID == "" {
			slog.Warn("Wire item without source id skipped", "uri", item.URI, "type", item.Type)
			continue
		}
		items = append(items, item)
	}
	return items
}

// sourceID prefers the item id, which is also what story associations carry,
// and falls back to the rendition content ids.
func sourceID(entry gjson.Result) string {
	return lo.CoalesceOrEmpty(
		entry.Get("altids.itemid").String(),
		entry.Get("renditions.main.contentid").String(),
		entry.Get("renditions.nitf.contentid").String(),
	)
}

func projectItem(entry gjson.Result) Item {
	item := Item{
		Type:             entry.Get("type").String(),
		SourceID:         sourceID(entry),
		URI:              entry.Get("uri").String(),
		Headline:         entry.Get("headline").String(),
		FirstCreated:     entry.Get("firstcreated").String(),
		VersionCreated:   entry.Get("versioncreated").String(),
		OriginalFileName: entry.Get("renditions.main.originalfilename").String(),
		Description:      entry.Get("description_caption").String(),
		DownloadURL:      entry.Get("renditions.main.href").String(),
		Pricing: Pricing{
			Tag: entry.Get("renditions.main.pricetag").String(),
		},
	}
	item.Kind = ClassifyKind(item.Type)

	if item.DownloadURL == "" {
		item.DownloadURL = entry.Get("renditions.nitf.href").String()
	}

	if priced := entry.Get("renditions.main.priced"); priced.Exists() && priced.Type != gjson.Null {
		item.Pricing.Priced = lo.ToPtr(priced.Bool())
	}

	item.Bylines = lo.Map(entry.Get("bylines").Array(), func(b gjson.Result, _ int) Byline {
		return Byline{By: b.Get("by").String(), Title: b.Get("title").String()}
	})

	entry.Get("associations").ForEach(func(_, assoc gjson.Result) bool {
		item.Associations = append(item.Associations, Association{
			SourceID: assoc.Get("altids.itemid").String(),
			Type:     assoc.Get("type").String(),
			URI:      assoc.Get("uri").String(),
			Headline: assoc.Get("headline").String(),
		})
		return true
	})

	return item
}

func (r *Reader) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	query := u.Query()
	for key, values := range params {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	if r.apiKey != "" {
		query.Set("apikey", r.apiKey)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
