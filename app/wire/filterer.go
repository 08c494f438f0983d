package wire

import (
	"fmt"
	"log/slog"
	"strings"
)

// Filterer drops pictures that would incur a cost to use.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(items []Item) []Item {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if excluded, reason := f.Excluded(item); excluded {
			slog.Warn("Wire item dropped",
				"source_id", item.SourceID,
				"type", item.Type,
				"headline", item.Headline,
				"reason", reason)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// Excluded reports whether the item is a picture whose pricing tag is
// anything but unlimited, empty or absent.
func (f *Filterer) Excluded(item Item) (bool, string) {
	if item.Kind != KindPicture {
		return false, ""
	}

	tag := strings.TrimSpace(item.Pricing.Tag)
	if tag == "" || strings.EqualFold(tag, "unlimited") {
		return false, ""
	}

	priced := "null"
	if item.Pricing.Priced != nil {
		priced = fmt.Sprintf("%t", *item.Pricing.Priced)
	}

	return true, fmt.Sprintf("picture is priced (priced=%s, pricetag=%q)", priced, tag)
}
