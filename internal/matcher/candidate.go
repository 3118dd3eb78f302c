package matcher

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/textnorm"
)

var reThreeLetters = regexp.MustCompile(`^[A-Z]{3}$`)

// fileCandidate is a file name prepared for the evidence tiers
type fileCandidate struct {
	name string
	base string
	// folded is base without accents and uppercased
	folded string
	// text is folded with provider aliases expanded
	text string

	// tokens are the distinct long letter runs of text
	tokens []string
	// delimited are the distinct three letter runs between hyphens or underscores
	delimited []string
	// expanded holds every substring of tokens at least MinProviderTokenLen
	// long, longest first, followed by delimited
	expanded []string

	// dates are the standalone valid YYMMDD runs of base
	dates []string
	// year and month come from the first 6-digit run of base
	year, month int
	hasMonth    bool
}

func newFileCandidate(file models.PdfFile, config *MatchingConfig, p patterns) *fileCandidate {
	base := file.BaseName()
	folded := textnorm.Fold(base)
	text := folded
	for _, a := range config.ProviderAliases {
		short := textnorm.FoldTrim(a.Short)
		if a.Expansion != "" && strings.Contains(text, short) {
			text = strings.ReplaceAll(text, short, textnorm.FoldTrim(a.Expansion))
		}
	}

	c := &fileCandidate{
		name:   file.Name,
		base:   base,
		folded: folded,
		text:   text,
		dates:  models.DateTokens(base),
	}
	c.year, c.month, _, c.hasMonth = models.DateFromName(base)

	c.tokens = distinct(p.letters.FindAllString(text, -1))
	c.delimited = delimitedTokens(text)
	c.expanded = append(expandTokens(c.tokens, config.MinProviderTokenLen), c.delimited...)
	return c
}

func (c *fileCandidate) hasProviderTokens() bool {
	return len(c.tokens) > 0 || len(c.delimited) > 0
}

func (c *fileCandidate) hasDate(yymmdd string) bool {
	if yymmdd == "" {
		return false
	}
	for _, d := range c.dates {
		if d == yymmdd {
			return true
		}
	}
	return false
}

// span returns the part of the original file name that folds to token, so
// evidence is shown the way the file spells it. The token itself is returned
// when folding changed the length of the name or the token came from an
// alias expansion.
func (c *fileCandidate) span(token string) string {
	i := strings.Index(c.folded, token)
	if i < 0 || utf8.RuneCountInString(c.base) != utf8.RuneCountInString(c.folded) {
		return token
	}
	start := utf8.RuneCountInString(c.folded[:i])
	runes := []rune(c.base)
	end := start + utf8.RuneCountInString(token)
	if end > len(runes) {
		return token
	}
	return string(runes[start:end])
}

// delimitedTokens returns the distinct three letter segments of s bounded by
// hyphens, underscores or the ends of the string.
func delimitedTokens(s string) []string {
	segments := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	var out []string
	for _, seg := range segments {
		if reThreeLetters.MatchString(seg) {
			out = append(out, seg)
		}
	}
	return distinct(out)
}

// expandTokens lists every substring of at least min letters of each token,
// without duplicates, longest first.
func expandTokens(tokens []string, minLen int) []string {
	var subs []string
	for _, tok := range tokens {
		for n := minLen; n <= len(tok); n++ {
			for i := 0; i+n <= len(tok); i++ {
				subs = append(subs, tok[i:i+n])
			}
		}
	}
	return byLengthDesc(subs)
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// byLengthDesc returns distinct values, longest first, keeping first-seen
// order among equal lengths
func byLengthDesc(values []string) []string {
	out := distinct(values)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func firstContained(candidates []string, haystack string) string {
	if haystack == "" {
		return ""
	}
	for _, c := range candidates {
		if c != "" && strings.Contains(haystack, c) {
			return c
		}
	}
	return ""
}
