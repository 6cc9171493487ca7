package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText folds a name down to its matching form - accents stripped,
// lower cased, punctuation replaced with spaces, whitespace collapsed.
// Used both for index deduplication keys and for query-side matching so the
// two always agree.
func NormalizeText(text string) string {
	folded, _, err := transform.String(foldTransformer, text)
	if err != nil {
		folded = text
	}

	folded = strings.ToLower(folded)

	var builder strings.Builder
	lastSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			builder.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(builder.String())
}

var markupReplacer = strings.NewReplacer(
	"<br/>", " ",
	"<br />", " ",
	"<b>", "",
	"</b>", "",
	"<p>", "",
	"</p>", "",
)

// CleanDisruptionText strips the simple HTML markup PRIM embeds in
// disruption message bodies.
func CleanDisruptionText(text string) string {
	return strings.TrimSpace(markupReplacer.Replace(text))
}

func ContainsString(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}

	return false
}

func TrimString(s string, length int) string {
	if len(s) <= length {
		return s
	}

	return s[:length]
}
