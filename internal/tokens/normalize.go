package tokens

import (
	"regexp"
	"strings"
)

// RE2 has no lookahead, so trailing "(?=\D|$)" guards are written as a
// consumed "(?:\D|$)". Only the first match is ever used, which keeps the
// two forms equivalent.
var (
	reKeyDateSpaces = regexp.MustCompile(`(?:^|\D)(\d{2})\s+(\d{2})\s+(\d{4})(?:\D|$)`)
	reKeyRef        = regexp.MustCompile(`(?i)(?:^|\W)REF\s*(\d{6})(?:\D|$)`)
	reKeyDDMMYY     = regexp.MustCompile(`(?:^|\D)(0[1-9]|[12]\d|3[01])(0[1-9]|1[0-2])(\d{2})(?:\D|$)`)
	reKeyLeadBlock  = regexp.MustCompile(`^\s*(\d{3,})\s*[–—-]\s*\d+`)
	reNonDigits     = regexp.MustCompile(`\D+`)

	reHasRef6       = regexp.MustCompile(`(?i)(?:^|\W)REF\s*\d{6}(?:\D|$)`)
	reHasDateSpaces = regexp.MustCompile(`(?:^|\D)\d{2}\s+\d{2}\s+\d{4}(?:\D|$)`)
	reRangeLike     = regexp.MustCompile(`^\d{3,4}-\d{3,4}\b`)
	reShortDate     = regexp.MustCompile(`^\s*\d{1,2}\s*[/.\- _]\s*\d{1,2}\s*[/.\- _]\s*\d{2,4}\s*$`)
)

// MatchKey canonicalizes token into the key compared across sources.
//
//	"05 11 2025"  -> "051125"
//	"REF 123456"  -> "123456"
//	"FV-051125"   -> "051125"  (valid ddmmyy run)
//	"1835-2025"   -> "1835"
//	"A/2024/0045" -> "20240045"
//
// The key may be empty when the token has no digits.
func MatchKey(token string) string {
	t := strings.TrimSpace(token)

	if m := reKeyDateSpaces.FindStringSubmatch(t); m != nil {
		return m[1] + m[2] + m[3][2:]
	}
	if m := reKeyRef.FindStringSubmatch(t); m != nil {
		return m[1]
	}
	if m := reKeyDDMMYY.FindStringSubmatch(t); m != nil {
		return m[1] + m[2] + m[3]
	}
	if !hasSlash(t) {
		if m := reKeyLeadBlock.FindStringSubmatch(t); m != nil {
			return m[1]
		}
	}
	return reNonDigits.ReplaceAllString(t, "")
}

// DisplayKey is the trimmed token shown to users in place of the match key.
// Tabs become spaces so that MatchKey(DisplayKey(t)) == MatchKey(t).
func DisplayKey(token string) string {
	return strings.TrimSpace(strings.ReplaceAll(token, "\t", " "))
}

// HasRef6 reports whether token contains REF followed by exactly six digits.
func HasRef6(token string) bool {
	return reHasRef6.MatchString(token)
}

// HasDateSpaces reports whether token contains a "dd mm yyyy" shape.
func HasDateSpaces(token string) bool {
	return reHasDateSpaces.MatchString(token)
}

// IsRangeLike reports whether token looks like "1234-5678": two 3-4 digit
// blocks joined by a dash, with no slashes.
func IsRangeLike(token string) bool {
	txt := strings.NewReplacer(" ", "", "–", "-", "—", "-").Replace(token)
	if hasSlash(txt) {
		return false
	}
	return reRangeLike.MatchString(txt)
}

// isShortShaped reports whether token is REF-prefixed or a short date, the two
// shapes that legitimately normalize to six digits.
func isShortShaped(token string) bool {
	s := strings.ToUpper(strings.TrimSpace(token))
	return strings.HasPrefix(s, "REF") || reShortDate.MatchString(s)
}
