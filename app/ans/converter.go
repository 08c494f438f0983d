package ans

import (
	"fmt"
	"log/slog"

	"github.com/lysyi3m/wire-comb/app/arcid"
	"github.com/lysyi3m/wire-comb/app/wire"
)

// Converter turns one classified wire item into a content document.
type Converter interface {
	Kind() wire.Kind
	SourceID() string
	ContentID() string
	Convert() (*Document, error)
	// SideDocuments returns nil for kinds that have none.
	SideDocuments() (*SideDocuments, error)
}

type baseConverter struct {
	item wire.Item
	site Site
}

func (b *baseConverter) SourceID() string {
	return b.item.SourceID
}

func (b *baseConverter) ContentID() string {
	return ContentID(b.item.SourceID, b.site.OrgID)
}

// ContentID derives the document id for a source id within an organization.
func ContentID(sourceID, orgID string) string {
	return arcid.MustGenerate(sourceID, orgID)
}

func documentType(upstreamType string) string {
	switch upstreamType {
	case "picture":
		return TypeImage
	case "text":
		return TypeStory
	default:
		return TypeUnsupported
	}
}

// convert fills the fields shared by every document and checks the
// resulting type against the one the variant produces.
func (b *baseConverter) convert(expectedType string) (*Document, error) {
	docType := documentType(b.item.Type)
	if docType != expectedType {
		return nil, fmt.Errorf("%w: item %s has type %q, expected %s",
			ErrMismatchedKind, b.item.SourceID, b.item.Type, expectedType)
	}

	slog.Debug("Converting wire item",
		"source_id", b.item.SourceID,
		"type", b.item.Type,
		"headline", b.item.Headline,
		"firstcreated", b.item.FirstCreated)

	return &Document{
		ID:          b.ContentID(),
		Type:        docType,
		Version:     Version,
		Owner:       Owner{ID: b.site.OrgID},
		PublishDate: b.item.FirstCreated,
		DisplayDate: b.item.FirstCreated,
		Distributor: Distributor{
			Name:     b.site.DistributorName,
			Category: "wires",
			Mode:     "custom",
		},
		Source: Source{
			Name:       b.site.DistributorName,
			SourceID:   b.item.SourceID,
			SourceType: "wires",
			System:     "wire-comb",
		},
	}, nil
}
