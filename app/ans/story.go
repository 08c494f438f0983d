package ans

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/wire-comb/app/arcid"
	"github.com/lysyi3m/wire-comb/app/content"
	"github.com/lysyi3m/wire-comb/app/fingerprint"
	"github.com/lysyi3m/wire-comb/app/wire"
	"github.com/samber/lo"
)

var _ Converter = (*StoryConverter)(nil)

type StoryConverter struct {
	baseConverter
	body    *content.Body
	omitted map[string]bool
}

// NewStoryConverter builds a converter for a story whose body has already
// been parsed. A nil body makes Convert fail with ErrIncomplete.
func NewStoryConverter(item wire.Item, body *content.Body, site Site) *StoryConverter {
	return &StoryConverter{
		baseConverter: baseConverter{item: item, site: site},
		body:          body,
	}
}

// WithoutAssociations returns a converter whose documents leave the given
// association source ids out of related_content.
func (c *StoryConverter) WithoutAssociations(sourceIDs ...string) *StoryConverter {
	omitted := make(map[string]bool, len(c.omitted)+len(sourceIDs))
	for id := range c.omitted {
		omitted[id] = true
	}
	for _, id := range sourceIDs {
		omitted[id] = true
	}

	return &StoryConverter{
		baseConverter: c.baseConverter,
		body:          c.body,
		omitted:       omitted,
	}
}

func (c *StoryConverter) Kind() wire.Kind {
	return wire.KindStory
}

func (c *StoryConverter) Convert() (*Document, error) {
	doc, err := c.convert(TypeStory)
	if err != nil {
		return nil, err
	}

	if c.body == nil {
		return nil, fmt.Errorf("%w: story %s has no body", ErrIncomplete, c.item.SourceID)
	}

	sha1, err := fingerprint.Compute(c.item, c.body)
	if err != nil {
		return nil, err
	}

	doc.CanonicalWebsite = c.site.Website
	doc.Headlines = &Headlines{Basic: c.item.Headline}
	if c.item.Description != "" {
		doc.Description = &Description{Basic: c.item.Description}
	}
	doc.Credits = &Credits{By: c.authors()}
	doc.ContentElements = c.elements()
	if related := c.relatedContent(); len(related) > 0 {
		doc.RelatedContent = &RelatedContent{Basic: related}
	}
	doc.AdditionalProperties = AdditionalProperties{
		SHA1:      sha1,
		OriginURL: c.item.URI,
	}

	slog.Debug("Story converted",
		"content_id", doc.ID,
		"source_id", c.item.SourceID,
		"headline", c.item.Headline,
		"elements", len(doc.ContentElements))

	return doc, nil
}

func (c *StoryConverter) SideDocuments() (*SideDocuments, error) {
	circulation, err := c.Circulation()
	if err != nil {
		return nil, err
	}
	operation, err := c.DeleteOperation()
	if err != nil {
		return nil, err
	}
	return &SideDocuments{Circulation: circulation, DeleteOperation: operation}, nil
}

func (c *StoryConverter) Circulation() (*Circulation, error) {
	if c.site.Website == "" || c.site.Section == "" {
		return nil, fmt.Errorf("%w: circulation needs a website and a section", ErrIncomplete)
	}

	section := Reference{
		Type: "reference",
		Referent: Referent{
			ID:      c.site.Section,
			Type:    "section",
			Website: c.site.Website,
		},
	}

	return &Circulation{
		DocumentID:            c.ContentID(),
		WebsiteID:             c.site.Website,
		WebsitePrimarySection: section,
		WebsiteSections:       []Reference{section},
	}, nil
}

func (c *StoryConverter) DeleteOperation() (*DeleteOperation, error) {
	if c.site.DeleteAfterDays <= 0 {
		return nil, fmt.Errorf("%w: delete window is not configured", ErrIncomplete)
	}

	date := c.site.now().AddDate(0, 0, c.site.DeleteAfterDays)

	return &DeleteOperation{
		Type:      "story_operation",
		StoryID:   c.ContentID(),
		Operation: "delete",
		Date:      date.Format(time.RFC3339),
	}, nil
}

// PhotoAssociationURLs lists associations that need a follow-up fetch.
func (c *StoryConverter) PhotoAssociationURLs() []string {
	return lo.FilterMap(c.item.Associations, func(a wire.Association, _ int) (string, bool) {
		return a.URI, a.IsPicture() && a.Item == nil && a.URI != ""
	})
}

func (c *StoryConverter) authors() []Author {
	return lo.FilterMap(c.item.Bylines, func(b wire.Byline, _ int) (Author, bool) {
		name := StripBy(b.By)
		if name == "" {
			return Author{}, false
		}
		return Author{Type: "author", Name: name, Slug: Slugify(name), Org: b.Title}, true
	})
}

func (c *StoryConverter) elements() []Element {
	elements := make([]Element, 0, len(c.body.Blocks))
	for i, block := range c.body.Blocks {
		element := Element{
			ID:   arcid.MustGenerate(c.item.SourceID, c.site.OrgID, i),
			Type: string(block.Kind),
		}

		switch block.Kind {
		case content.BlockHeader:
			element.Content = block.Content
			element.Level = block.Level
		case content.BlockQuote:
			element.ContentElements = []Element{{Type: "text", Content: block.Content}}
		case content.BlockList:
			element.ListType = "unordered"
			if block.Ordered {
				element.ListType = "ordered"
			}
			element.Items = lo.Map(block.Items, func(text string, _ int) Element {
				return Element{Type: "text", Content: text}
			})
		default:
			element.Content = block.Content
		}

		elements = append(elements, element)
	}
	return elements
}

func (c *StoryConverter) relatedContent() []Reference {
	return lo.FilterMap(c.item.Associations, func(a wire.Association, _ int) (Reference, bool) {
		if a.SourceID == "" || !a.IsPicture() || c.omitted[a.SourceID] {
			return Reference{}, false
		}
		return Reference{
			Type:     "reference",
			Referent: Referent{ID: ContentID(a.SourceID, c.site.OrgID), Type: TypeImage},
		}, true
	})
}
