// Package arcid derives deterministic content identifiers.
//
// An identifier is the 128-bit BLAKE2b digest of the canonical JSON encoding
// of the inputs, read as a UUID and rendered as 26 characters of unpadded,
// upper-case base32. The same inputs always produce the same identifier, in
// any process, so the organization should be one of the inputs to keep
// identifiers from colliding across organizations.
package arcid

import (
	"bytes"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf16"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generate returns the identifier for the ordered parts. Parts must be JSON
// serializable; a slice counts as a single nested part.
func Generate(parts ...any) (string, error) {
	if parts == nil {
		parts = []any{}
	}

	payload, err := canonicalJSON([]any{parts, map[string]any{}})
	if err != nil {
		return "", fmt.Errorf("failed to encode identifier parts: %w", err)
	}

	h, err := blake2b.New(16, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create digest: %w", err)
	}
	h.Write(payload)

	id, err := uuid.FromBytes(h.Sum(nil))
	if err != nil {
		return "", fmt.Errorf("failed to read digest as uuid: %w", err)
	}

	return encoding.EncodeToString(id[:]), nil
}

// MustGenerate is Generate for inputs known to be serializable.
func MustGenerate(parts ...any) string {
	id, err := Generate(parts...)
	if err != nil {
		panic(err)
	}
	return id
}

// canonicalJSON encodes v with sorted object keys, no insignificant
// whitespace, and non-ASCII characters escaped as \uXXXX.
func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	raw := bytes.TrimRight(buf.Bytes(), "\n")

	out := make([]byte, 0, len(raw))
	for _, r := range string(raw) {
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		for _, unit := range utf16.Encode([]rune{r}) {
			out = append(out, `\u`...)
			hex := strconv.FormatUint(uint64(unit), 16)
			for i := len(hex); i < 4; i++ {
				out = append(out, '0')
			}
			out = append(out, hex...)
		}
	}

	return out, nil
}
