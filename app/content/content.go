package content

import (
	"bytes"
	"fmt"
	"log/slog"
)

// Parse turns raw story markup into ordered blocks. XML (NITF) bodies also
// yield a JSON tree used for fingerprinting.
func Parse(data []byte) (*Body, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("body is empty")
	}

	if isXML(trimmed) {
		tree, err := ParseTree(trimmed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML body: %w", err)
		}

		blocks, err := nitfBlocks(trimmed)
		if err != nil {
			return nil, err
		}

		slog.Debug("XML body parsed", "blocks", len(blocks))

		return &Body{Blocks: blocks, Tree: tree}, nil
	}

	blocks, err := htmlBlocks(trimmed)
	if err != nil {
		return nil, err
	}

	slog.Debug("HTML body parsed", "blocks", len(blocks))

	return &Body{Blocks: blocks}, nil
}

func isXML(data []byte) bool {
	lower := bytes.ToLower(data[:min(len(data), 64)])
	return bytes.HasPrefix(lower, []byte("<?xml")) || bytes.HasPrefix(lower, []byte("<nitf"))
}
