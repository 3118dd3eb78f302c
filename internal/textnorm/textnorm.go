// Package textnorm folds free text into the uppercase, accent-free form used
// for every case- and diacritics-insensitive comparison in the module.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips combining marks, so "Gestión" becomes "Gestion"
// and "Ñ" becomes "N". Rune count is preserved for precomposed Latin input.
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Fold removes diacritics and uppercases s.
func Fold(s string) string {
	return strings.ToUpper(RemoveDiacritics(s))
}

// FoldTrim is Fold followed by trimming surrounding whitespace.
func FoldTrim(s string) string {
	return strings.TrimSpace(Fold(s))
}

// ContainsFold reports whether needle occurs in haystack ignoring case and accents.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// ReplaceBreaks turns non-breaking spaces and line breaks into plain spaces.
func ReplaceBreaks(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\r", " ", "\n", " ").Replace(s)
}
