// Package title normalizes and matches movie display names so that
// watchlist entries can be lined up with availability search results.
package title

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// yearSuffixRegex matches a trailing "(YYYY)" release year, as used in
// watchlist display names like "The Godfather (1972)".
var yearSuffixRegex = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

// SplitYear separates a display name into the bare title and the release
// year. Year is 0 when the name carries no year suffix.
func SplitYear(name string) (string, int) {
	m := yearSuffixRegex.FindStringSubmatchIndex(name)
	if m == nil {
		return strings.TrimSpace(name), 0
	}
	year, _ := strconv.Atoi(name[m[2]:m[3]])
	return strings.TrimSpace(name[:m[0]]), year
}

// Clean normalizes a title for matching purposes: lowercase, accents
// removed, articles stripped, punctuation folded to spaces.
func Clean(name string) string {
	s := strings.ToLower(name)
	s = removeAccents(s)

	// A spaced hyphen separates a subtitle just like a colon does
	// ("Leon - The Professional"); an unspaced hyphen is part of the word
	// ("Spider-Man") and folds to a space.
	s = strings.ReplaceAll(s, " - ", ":")
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")

	// Split on colon to handle subtitles (e.g. "Léon: The Professional")
	// and strip leading articles from each part.
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
