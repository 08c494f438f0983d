package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/lysyi3m/wire-comb/app/content"
	"github.com/lysyi3m/wire-comb/app/wire"
	"github.com/samber/lo"
)

// Attributes of the XML root that change on every re-issue of the same story.
var volatileTreeKeys = []string{"@version", "@change.date", "@change.time"}

// Compute hashes the fields of an item that carry meaning. Download URLs,
// the item URI and pricing are left out, associations count by id only.
// body may be nil for pictures.
func Compute(item wire.Item, body *content.Body) (string, error) {
	source := map[string]any{
		"type":             item.Type,
		"source_id":        item.SourceID,
		"headline":         item.Headline,
		"bylines":          item.Bylines,
		"firstcreated":     item.FirstCreated,
		"versioncreated":   item.VersionCreated,
		"originalfilename": item.OriginalFileName,
		"description":      item.Description,
		"associations": lo.Map(item.Associations, func(a wire.Association, _ int) string {
			return a.SourceID
		}),
	}

	if body != nil {
		if body.Tree != nil {
			tree := maps.Clone(body.Tree)
			for _, key := range volatileTreeKeys {
				delete(tree, key)
			}
			source["content"] = tree
		} else {
			source["content"] = lo.Map(body.Blocks, func(b content.Block, _ int) map[string]any {
				return map[string]any{
					"kind":    b.Kind,
					"content": b.Content,
					"level":   b.Level,
					"ordered": b.Ordered,
					"items":   b.Items,
				}
			})
		}
	}

	data, err := json.Marshal(source)
	if err != nil {
		return "", fmt.Errorf("failed to serialize fingerprint source: %w", err)
	}

	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
