package ans

import (
	"errors"
	"time"
)

const Version = "0.10.7"

const (
	TypeStory       = "story"
	TypeImage       = "image"
	TypeUnsupported = "unsupported"
)

var (
	// ErrMismatchedKind means the converter variant disagrees with the item type.
	ErrMismatchedKind = errors.New("converter does not match item type")
	// ErrIncomplete means a required document could not be derived.
	ErrIncomplete = errors.New("document is incomplete")
)

// Site carries the organization settings every document is built against.
type Site struct {
	OrgID              string
	Website            string
	Section            string
	DistributorName    string
	DeleteAfterDays    int
	PhotoRetentionDays int
	Now                func() time.Time
}

func (s Site) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type Owner struct {
	ID string `json:"id"`
}

type Distributor struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Mode     string `json:"mode"`
}

type Source struct {
	Name       string `json:"name"`
	SourceID   string `json:"source_id"`
	SourceType string `json:"source_type"`
	System     string `json:"system"`
}

type Headlines struct {
	Basic string `json:"basic"`
}

type Description struct {
	Basic string `json:"basic"`
}

type Author struct {
	ID   string `json:"_id,omitempty"`
	Type string `json:"type"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Org  string `json:"org,omitempty"`
}

type Credits struct {
	By []Author `json:"by"`
}

type Element struct {
	ID              string    `json:"_id,omitempty"`
	Type            string    `json:"type"`
	Content         string    `json:"content,omitempty"`
	Level           int       `json:"level,omitempty"`
	ListType        string    `json:"list_type,omitempty"`
	Items           []Element `json:"items,omitempty"`
	ContentElements []Element `json:"content_elements,omitempty"`
}

type Referent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Website string `json:"website,omitempty"`
}

type Reference struct {
	Type     string   `json:"type"`
	Referent Referent `json:"referent"`
}

type RelatedContent struct {
	Basic []Reference `json:"basic"`
}

type AdditionalProperties struct {
	SHA1           string `json:"sha1"`
	OriginURL      string `json:"origin_url,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	OriginalName   string `json:"originalName,omitempty"`
	OriginalURL    string `json:"originalUrl,omitempty"`
}

// Document is a content document for a story or an image.
type Document struct {
	ID                   string               `json:"_id"`
	Type                 string               `json:"type"`
	Version              string               `json:"version"`
	CanonicalWebsite     string               `json:"canonical_website,omitempty"`
	Owner                Owner                `json:"owner"`
	PublishDate          string               `json:"publish_date,omitempty"`
	DisplayDate          string               `json:"display_date,omitempty"`
	Distributor          Distributor          `json:"distributor"`
	Source               Source               `json:"source"`
	Headlines            *Headlines           `json:"headlines,omitempty"`
	Description          *Description         `json:"description,omitempty"`
	Credits              *Credits             `json:"credits,omitempty"`
	ContentElements      []Element            `json:"content_elements,omitempty"`
	RelatedContent       *RelatedContent      `json:"related_content,omitempty"`
	URL                  string               `json:"url,omitempty"`
	Caption              string               `json:"caption,omitempty"`
	Subtitle             string               `json:"subtitle,omitempty"`
	AdditionalProperties AdditionalProperties `json:"additional_properties"`
}

func (d *Document) Fingerprint() string {
	return d.AdditionalProperties.SHA1
}

// Circulation routes a story into a website section.
type Circulation struct {
	DocumentID            string      `json:"document_id"`
	WebsiteID             string      `json:"website_id"`
	WebsitePrimarySection Reference   `json:"website_primary_section"`
	WebsiteSections       []Reference `json:"website_sections"`
}

// DeleteOperation schedules removal of a story.
type DeleteOperation struct {
	Type      string `json:"type"`
	StoryID   string `json:"story_id"`
	Operation string `json:"operation"`
	Date      string `json:"date"`
}

// SideDocuments are delivered next to a story's document, each to its own endpoint.
type SideDocuments struct {
	Circulation     *Circulation
	DeleteOperation *DeleteOperation
}

func (s *SideDocuments) Complete() bool {
	return s != nil && s.Circulation != nil && s.DeleteOperation != nil
}
