package ans

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lowerCaser = cases.Lower(language.Und)

// StripBy removes a leading "by" token from a byline.
func StripBy(byline string) string {
	trimmed := strings.TrimSpace(byline)
	fields := strings.Fields(trimmed)
	if len(fields) > 1 && strings.EqualFold(fields[0], "by") {
		return strings.TrimSpace(trimmed[len(fields[0]):])
	}
	return trimmed
}

// Slugify folds a name to lowercase ASCII words joined by dashes.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = lowerCaser.String(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
