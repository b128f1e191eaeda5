package release

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds full-width forms (／, －, ０５, ＣＨＳ) to their ASCII
// equivalents so the title patterns see a single representation.
func Normalize(title string) string {
	return norm.NFKC.String(title)
}

// CleanTitle normalizes a title for fuzzy matching.
// Lowercases, folds widths and accents, drops punctuation and collapses whitespace.
func CleanTitle(title string) string {
	s := strings.ToLower(Normalize(title))
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.NewReplacer("-", " ", "_", " ", ".", " ", ":", " ", "/", " ", "'", "").Replace(s)

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) > 1 {
		fields = stripLeadingArticle(fields)
	}
	return strings.Join(fields, " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(fields []string) []string {
	switch fields[0] {
	case "the", "a", "an":
		return fields[1:]
	}
	return fields
}
