package ans

import (
	"log/slog"
	"time"

	"github.com/lysyi3m/wire-comb/app/fingerprint"
	"github.com/lysyi3m/wire-comb/app/wire"
)

var _ Converter = (*PictureConverter)(nil)

type PictureConverter struct {
	baseConverter
}

func NewPictureConverter(item wire.Item, site Site) *PictureConverter {
	return &PictureConverter{baseConverter: baseConverter{item: item, site: site}}
}

func (c *PictureConverter) Kind() wire.Kind {
	return wire.KindPicture
}

func (c *PictureConverter) Convert() (*Document, error) {
	doc, err := c.convert(TypeImage)
	if err != nil {
		return nil, err
	}

	sha1, err := fingerprint.Compute(c.item, nil)
	if err != nil {
		return nil, err
	}

	doc.URL = c.item.DownloadURL
	doc.Caption = c.item.Description
	doc.Subtitle = c.item.Headline
	doc.AdditionalProperties = AdditionalProperties{
		SHA1:           sha1,
		OriginURL:      c.item.URI,
		ExpirationDate: c.ExpirationDate().Format(time.RFC3339),
		OriginalName:   c.item.OriginalFileName,
		OriginalURL:    c.item.DownloadURL,
	}

	slog.Debug("Picture converted",
		"content_id", doc.ID,
		"source_id", c.item.SourceID,
		"headline", c.item.Headline)

	return doc, nil
}

// SideDocuments is always nil for pictures.
func (c *PictureConverter) SideDocuments() (*SideDocuments, error) {
	return nil, nil
}

// ExpirationDate is midnight UTC at the end of the retention window.
func (c *PictureConverter) ExpirationDate() time.Time {
	expires := c.site.now().AddDate(0, 0, c.site.PhotoRetentionDays)
	return time.Date(expires.Year(), expires.Month(), expires.Day(), 0, 0, 0, 0, time.UTC)
}
