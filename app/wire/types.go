package wire

import "context"

type Kind string

const (
	KindStory       Kind = "story"
	KindPicture     Kind = "picture"
	KindUnsupported Kind = "unsupported"
)

// ClassifyKind maps the upstream item type onto the kinds the pipeline delivers.
func ClassifyKind(upstreamType string) Kind {
	switch upstreamType {
	case "text":
		return KindStory
	case "picture":
		return KindPicture
	default:
		return KindUnsupported
	}
}

type Byline struct {
	By    string `json:"by"`
	Title string `json:"title,omitempty"`
}

// Association is an item, usually a picture, referenced from a story.
type Association struct {
	SourceID string `json:"itemid"`
	Type     string `json:"type"`
	URI      string `json:"uri"`
	Headline string `json:"headline,omitempty"`

	// Item is set when the feed embeds the full picture entry, so no
	// follow-up fetch is needed.
	Item *Item `json:"-"`
}

// IsPicture reports whether the association references a picture. An
// untyped association is assumed to be one.
func (a Association) IsPicture() bool {
	return a.Type == "" || ClassifyKind(a.Type) == KindPicture
}

type Pricing struct {
	Priced *bool
	Tag    string
}

// Item is one feed entry after field projection. Timestamps are passed through verbatim.
type Item struct {
	Kind             Kind
	Type             string // upstream type, verbatim
	SourceID         string
	URI              string
	Headline         string
	FirstCreated     string
	VersionCreated   string
	DownloadURL      string
	OriginalFileName string
	Description      string
	Bylines          []Byline
	Associations     []Association
	Pricing          Pricing

	// Body holds the story markup when the feed embeds it.
	Body string
}

// Page is the result of one feed fetch.
type Page struct {
	Items            []Item
	NextPage         string
	Sequence         string
	PreviousSequence string
}

// Source is an upstream wire provider.
type Source interface {
	// FetchPage returns the items of one feed page. It never fails: an
	// unsuccessful fetch yields an empty page without a continuation.
	FetchPage(ctx context.Context, pageURL string) *Page
	// FetchItem fetches a single entry, such as a story association.
	FetchItem(ctx context.Context, uri string) (*Item, bool)
	// FetchContent fetches the body markup of a story.
	FetchContent(ctx context.Context, downloadURL string) ([]byte, error)
}
