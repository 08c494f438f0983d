package wire

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func feedEntry(itemType, id, extra string) string {
	return fmt.Sprintf(`{"item": {"type": %q, "altids": {"itemid": %q}, "uri": "https://wire.example.com/content/%s", "headline": "Headline %s", "firstcreated": "2024-03-01T10:00:00Z", "versioncreated": "2024-03-01T11:00:00Z"%s}}`,
		itemType, id, id, id, extra)
}

func newFeedServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestReader_FetchPage(t *testing.T) {
	var gotQuery, gotKey string

	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("apikey")

		entries := []string{
			feedEntry("text", "story-1", `, "bylines": [{"by": "By Jane Doe", "title": "Reporter"}], "renditions": {"nitf": {"href": "https://wire.example.com/nitf/story-1"}}, "associations": {"1": {"type": "picture", "altids": {"itemid": "photo-1"}, "uri": "https://wire.example.com/content/photo-1"}}`),
			feedEntry("text", "story-2", ""),
			feedEntry("text", "story-3", ""),
			feedEntry("text", "story-4", ""),
			feedEntry("text", "story-5", ""),
			feedEntry("text", "story-6", ""),
			feedEntry("text", "story-7", ""),
			feedEntry("video", "video-1", ""),
			feedEntry("picture", "photo-1", `, "renditions": {"main": {"href": "https://wire.example.com/photo-1.jpg", "originalfilename": "photo-1.jpg", "priced": false, "pricetag": "Unlimited"}}`),
			feedEntry("picture", "photo-2", `, "renditions": {"main": {"href": "https://wire.example.com/photo-2.jpg", "priced": true, "pricetag": "Premium"}}`),
		}

		fmt.Fprintf(w, `{"params": {"seq": "100"}, "data": {"next_page": "https://wire.example.com/feed?seq=101&page_size=10", "items": [%s]}}`,
			strings.Join(entries, ","))
	})

	reader := NewReader(server.Client(), server.URL+"/feed", "secret", "type:text", "test-agent")
	page := reader.FetchPage(context.Background(), "")

	if gotQuery != "type:text" {
		t.Errorf("Expected query on first page, got: %q", gotQuery)
	}
	if gotKey != "secret" {
		t.Errorf("Expected api key to be sent, got: %q", gotKey)
	}

	if len(page.Items) != 9 {
		t.Fatalf("Expected 9 items after dropping the priced picture, got %d", len(page.Items))
	}
	if page.NextPage != "https://wire.example.com/feed?seq=101&page_size=10" {
		t.Errorf("Unexpected next page: %s", page.NextPage)
	}
	if page.Sequence != "101" {
		t.Errorf("Expected sequence 101, got %s", page.Sequence)
	}
	if page.PreviousSequence != "100" {
		t.Errorf("Expected previous sequence 100, got %s", page.PreviousSequence)
	}

	story := page.Items[0]
	if story.Kind != KindStory || story.SourceID != "story-1" {
		t.Errorf("Unexpected first item: %+v", story)
	}
	if story.DownloadURL != "https://wire.example.com/nitf/story-1" {
		t.Errorf("Expected nitf fallback download URL, got: %s", story.DownloadURL)
	}
	if len(story.Bylines) != 1 || story.Bylines[0].By != "By Jane Doe" {
		t.Errorf("Unexpected bylines: %+v", story.Bylines)
	}
	if len(story.Associations) != 1 || story.Associations[0].SourceID != "photo-1" {
		t.Errorf("Unexpected associations: %+v", story.Associations)
	}

	kinds := map[Kind]int{}
	for _, item := range page.Items {
		kinds[item.Kind]++
	}
	if kinds[KindUnsupported] != 1 {
		t.Errorf("Expected 1 unsupported item, got %d", kinds[KindUnsupported])
	}
	if kinds[KindPicture] != 1 {
		t.Errorf("Expected 1 picture item, got %d", kinds[KindPicture])
	}

	picture := page.Items[8]
	if picture.SourceID != "photo-1" || picture.OriginalFileName != "photo-1.jpg" {
		t.Errorf("Unexpected picture: %+v", picture)
	}
	if picture.Pricing.Priced == nil || *picture.Pricing.Priced {
		t.Errorf("Expected priced=false, got %v", picture.Pricing.Priced)
	}
}

func TestReader_FetchPageContinuationOmitsQuery(t *testing.T) {
	var gotQuery string

	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"data": {"items": []}}`)
	})

	reader := NewReader(server.Client(), server.URL+"/feed", "", "type:text", "test-agent")
	page := reader.FetchPage(context.Background(), server.URL+"/feed?seq=5")

	if gotQuery != "" {
		t.Errorf("Expected no query on continuation page, got: %q", gotQuery)
	}
	if len(page.Items) != 0 || page.NextPage != "" {
		t.Errorf("Expected empty page, got %+v", page)
	}
}

func TestReader_FetchPageSingleItemShape(t *testing.T) {
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data": {"item": %s}}`, strings.TrimSuffix(strings.TrimPrefix(feedEntry("text", "story-1", ""), `{"item": `), "}"))
	})

	reader := NewReader(server.Client(), server.URL, "", "", "test-agent")
	page := reader.FetchPage(context.Background(), "")

	if len(page.Items) != 1 || page.Items[0].SourceID != "story-1" {
		t.Errorf("Expected single story, got %+v", page.Items)
	}
}

func TestReader_SourceIDFallsBackToContentID(t *testing.T) {
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"items": [
			{"item": {"type": "text", "uri": "https://wire.example.com/content/a", "renditions": {"nitf": {"contentid": "nitf-1", "href": "https://wire.example.com/nitf/a"}}}},
			{"item": {"type": "picture", "uri": "https://wire.example.com/content/b", "renditions": {"main": {"contentid": "main-1", "href": "https://wire.example.com/b.jpg"}, "nitf": {"contentid": "nitf-2"}}}},
			{"item": {"type": "text", "altids": {"itemid": "story-1"}, "uri": "https://wire.example.com/content/c", "renditions": {"nitf": {"contentid": "nitf-3"}}}}
		]}}`)
	})

	reader := NewReader(server.Client(), server.URL, "", "", "test-agent")
	page := reader.FetchPage(context.Background(), "")

	if len(page.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(page.Items))
	}

	expected := []string{"nitf-1", "main-1", "story-1"}
	for i, id := range expected {
		if page.Items[i].SourceID != id {
			t.Errorf("Expected source id %s, got %s", id, page.Items[i].SourceID)
		}
	}
}

func TestReader_FetchPageUnauthorized(t *testing.T) {
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "invalid key"}`)
	})

	reader := NewReader(server.Client(), server.URL, "bad", "", "test-agent")
	page := reader.FetchPage(context.Background(), "")

	if page == nil {
		t.Fatal("Expected empty page, got nil")
	}
	if len(page.Items) != 0 || page.NextPage != "" {
		t.Errorf("Expected empty page without continuation, got %+v", page)
	}
}

func TestReader_FetchItem(t *testing.T) {
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content/photo-1":
			fmt.Fprint(w, `{"data": {"item": {"type": "picture", "altids": {"itemid": "photo-1"}, "renditions": {"main": {"href": "https://wire.example.com/photo-1.jpg", "pricetag": "Unlimited"}}}}}`)
		case "/content/photo-2":
			fmt.Fprint(w, `{"data": {"item": {"type": "picture", "altids": {"itemid": "photo-2"}, "renditions": {"main": {"pricetag": "Premium"}}}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	reader := NewReader(server.Client(), server.URL, "", "", "test-agent")

	item, ok := reader.FetchItem(context.Background(), server.URL+"/content/photo-1")
	if !ok || item.SourceID != "photo-1" || item.Kind != KindPicture {
		t.Errorf("Expected photo-1, got %+v (ok=%v)", item, ok)
	}

	if _, ok := reader.FetchItem(context.Background(), server.URL+"/content/photo-2"); ok {
		t.Errorf("Expected priced picture to be dropped")
	}

	if _, ok := reader.FetchItem(context.Background(), server.URL+"/content/missing"); ok {
		t.Errorf("Expected missing item to fail")
	}
}

func TestReader_FetchContent(t *testing.T) {
	server := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<nitf/>")
	})

	reader := NewReader(server.Client(), server.URL, "", "", "test-agent")

	data, err := reader.FetchContent(context.Background(), server.URL+"/nitf")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != "<nitf/>" {
		t.Errorf("Unexpected content: %s", data)
	}

	if _, err := reader.FetchContent(context.Background(), ""); err == nil {
		t.Errorf("Expected error for empty download URL")
	}
}
