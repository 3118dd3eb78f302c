// Package tokens turns noisy document, concept and invoice-number cells into
// comparable invoice identities.
//
// Three stages are involved:
//  1. Extract picks the substring of a free-text cell that most looks like an
//     invoice identifier (the "token").
//  2. MatchKey canonicalizes a token into the key used for equality between
//     sources, while DisplayKey keeps the human readable form.
//  3. Selector chooses between the two candidate fields of a ledger row and
//     decides whether a token is usable at all.
//
// All functions are pure and safe for concurrent use.
package tokens

import (
	"regexp"
	"strings"
	"unicode"

	"invoice-reconciliation-service/internal/textnorm"
)

// slash-like characters accepted between digit groups: ASCII slash, division
// slash and full-width solidus.
const slashChars = "/∕／"

var (
	reDateSpaces     = regexp.MustCompile(`\b\d{2}\s+\d{2}\s+\d{4}\b`)
	reSlashTriplet   = regexp.MustCompile(`\d{2}[/\x{2215}\x{FF0F}]\d{4}[/\x{2215}\x{FF0F}]\d{6}`)
	reRefExtract     = regexp.MustCompile(`(?i)(?:^|[\s'\-])REF\s*(\d{6})(?:\b|$)`)
	reDashBlocks     = regexp.MustCompile(`\d{3,}\s*[–—-]\s*\d{2,}`)
	reDigitRun       = regexp.MustCompile(`\d[\d/.\-\x{2215}\x{FF0F}]*\d`)
	reFullSlashTrip  = regexp.MustCompile(`^\d{2}[/\x{2215}\x{FF0F}]\d{4}[/\x{2215}\x{FF0F}]\d{6}$`)
	reLeadingDashRun = regexp.MustCompile(`^\s*\d{3,}\s*[–—-]\s*\d+\b`)
)

// Extract returns the substring of text judged most likely to be an invoice
// identifier. Rules are tried in order and the first hit wins:
//
//	"dd mm yyyy", "NN/NNNN/NNNNNN", "REF" + 6 digits, "NNN-NN" ranges,
//	the digit run with most digits (then most slashes),
//	and finally the text up to the first space.
//
// The result may be empty but Extract never fails.
func Extract(text string) string {
	txt := strings.TrimSpace(textnorm.ReplaceBreaks(text))

	if m := reDateSpaces.FindString(txt); m != "" {
		return m
	}
	if m := reSlashTriplet.FindString(txt); m != "" {
		return m
	}
	if m := reRefExtract.FindStringSubmatch(txt); m != nil {
		return "REF" + m[1]
	}
	if m := reDashBlocks.FindString(txt); m != "" {
		return strings.TrimSpace(m)
	}

	if runs := reDigitRun.FindAllString(txt, -1); len(runs) > 0 {
		best, bestDigits, bestSlashes := "", -1, -1
		for _, run := range runs {
			digits, slashes := CountDigits(run), CountSlashes(run)
			if digits > bestDigits || (digits == bestDigits && slashes > bestSlashes) {
				best, bestDigits, bestSlashes = run, digits, slashes
			}
		}
		return best
	}

	if sp := strings.IndexByte(txt, ' '); sp > 0 {
		return txt[:sp]
	}
	return txt
}

// CountDigits counts decimal digits in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// CountSlashes counts slash-like separators in s.
func CountSlashes(s string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(slashChars, r) {
			n++
		}
	}
	return n
}

func hasSlash(s string) bool {
	return strings.ContainsAny(s, slashChars)
}

// IsSlashTriplet reports whether the whole token is shaped NN/NNNN/NNNNNN.
func IsSlashTriplet(token string) bool {
	return reFullSlashTrip.MatchString(token)
}

// IsMixedSlashDash reports whether token contains both '/' and '-'. Such
// tokens are ambiguous and never used as keys.
func IsMixedSlashDash(token string) bool {
	return strings.Contains(token, "/") && strings.Contains(token, "-")
}
