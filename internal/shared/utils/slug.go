package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)
)

// Slugify converts a title into a URL-safe identifier: lowercase, only
// [a-z0-9-], single hyphens, no leading/trailing hyphens. Deterministic.
//
// A title with no alphanumeric characters yields "" and the caller must
// treat that as invalid; Slugify itself does not guarantee uniqueness.
func Slugify(title string) string {
	// Fold accents: "Crème Brûlée" → "Creme Brulee"
	ascii := RemoveDiacritics(title)

	lower := strings.ToLower(ascii)

	hyphenated := strings.ReplaceAll(lower, " ", "-")

	cleaned := slugInvalidChars.ReplaceAllString(hyphenated, "")

	normalized := slugHyphenRuns.ReplaceAllString(cleaned, "-")

	return strings.Trim(normalized, "-")
}

// RemoveDiacritics strips combining marks after NFD decomposition,
// mapping accented letters to their ASCII base characters.
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return result
}
