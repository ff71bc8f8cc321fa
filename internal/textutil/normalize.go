package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle folds a media title into a comparison key: compatibility
// normalization, case folding, punctuation dropped, whitespace collapsed.
// Titles that differ only in those respects map to the same key.
func NormalizeTitle(title string) string {
	folded := cases.Fold().String(norm.NFKC.String(title))
	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			space = true
		}
	}
	return b.String()
}

// DisplayName title-cases a user supplied name for messages, collapsing
// repeated whitespace. Empty input stays empty.
func DisplayName(name string) string {
	fields := strings.Fields(norm.NFC.String(name))
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}
