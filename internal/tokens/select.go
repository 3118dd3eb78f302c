package tokens

import "fmt"

// Selector holds the digit-count policy used to decide whether a token is a
// usable invoice identity.
type Selector struct {
	// MinDigits is the minimum match-key length for ordinary numeric tokens.
	MinDigits int
	// ShortMinDigits applies to REF-prefixed and short date shaped tokens.
	ShortMinDigits int
	// MaxDigits rejects tokens whose key is implausibly long.
	MaxDigits int
}

// DefaultSelector returns the production policy: 8 digits, 6 for REF or
// date-shaped tokens, at most 999.
func DefaultSelector() Selector {
	return Selector{MinDigits: 8, ShortMinDigits: 6, MaxDigits: 999}
}

// Validate checks the policy bounds.
func (s Selector) Validate() error {
	if s.MinDigits <= 0 || s.ShortMinDigits <= 0 {
		return fmt.Errorf("minimum key digits must be positive")
	}
	if s.MaxDigits < s.MinDigits || s.MaxDigits < s.ShortMinDigits {
		return fmt.Errorf("maximum key digits (%d) must not be below the minimums", s.MaxDigits)
	}
	return nil
}

// MinNeed returns the minimum key length required for token.
func (s Selector) MinNeed(token string) int {
	if isShortShaped(token) {
		return s.ShortMinDigits
	}
	return s.MinDigits
}

// Pick chooses one token from a ledger row's document and concept fields.
//
// Tokens mixing '/' and '-' are discarded first. Then, in order: a REF+6
// token (document first), a "dd mm yyyy" token (document first), a leading
// dash range (concept first), a full NN/NNNN/NNNNNN token (concept first).
// Otherwise both candidates are scored by key length; a candidate shorter
// than MinNeed, longer than MaxDigits or range-like is disqualified. The
// longer survivor wins, ties go to the one with more slashes, then concept.
// Returns "" when nothing qualifies.
func (s Selector) Pick(document, concept string) string {
	tDoc := Extract(document)
	tConc := Extract(concept)

	if IsMixedSlashDash(tDoc) {
		tDoc = ""
	}
	if IsMixedSlashDash(tConc) {
		tConc = ""
	}

	for _, t := range []string{tDoc, tConc} {
		if t != "" && HasRef6(t) {
			return t
		}
	}
	for _, t := range []string{tDoc, tConc} {
		if t != "" && HasDateSpaces(t) {
			return t
		}
	}
	for _, t := range []string{tConc, tDoc} {
		if t != "" && reLeadingDashRun.MatchString(t) {
			return t
		}
	}
	for _, t := range []string{tConc, tDoc} {
		if t != "" && IsSlashTriplet(t) {
			return t
		}
	}

	dDoc, dConc := CountDigits(MatchKey(tDoc)), CountDigits(MatchKey(tConc))
	sDoc, sConc := CountSlashes(tDoc), CountSlashes(tConc)

	if s.disqualified(tDoc, dDoc) {
		tDoc, dDoc = "", 0
	}
	if s.disqualified(tConc, dConc) {
		tConc, dConc = "", 0
	}

	switch {
	case tDoc == "" && tConc == "":
		return ""
	case tDoc == "":
		return tConc
	case tConc == "":
		return tDoc
	case dConc > dDoc:
		return tConc
	case dDoc > dConc:
		return tDoc
	case sConc >= sDoc:
		return tConc
	default:
		return tDoc
	}
}

func (s Selector) disqualified(token string, digits int) bool {
	return digits < s.MinNeed(token) || digits > s.MaxDigits || IsRangeLike(token)
}

// Usable reports whether a selected token yields a key good enough to
// aggregate under: non-empty and long enough, or range-like, or date-shaped.
func (s Selector) Usable(token string) bool {
	if token == "" {
		return false
	}
	key := MatchKey(token)
	if key == "" {
		return false
	}
	return len(key) >= s.MinNeed(token) || IsRangeLike(token) || HasDateSpaces(token)
}

// BestInCells scans spare cells of a row and returns the best shaped token:
// a full slash triplet, or a non range-like token whose key length lies in
// [MinNeed, MaxDigits]. The longest key wins, the first on ties.
func (s Selector) BestInCells(cells []string) string {
	best, bestDigits := "", -1
	for _, raw := range cells {
		tok := Extract(raw)
		if tok == "" {
			continue
		}
		d := len(MatchKey(tok))
		ok := IsSlashTriplet(tok) || (d >= s.MinNeed(tok) && d <= s.MaxDigits && !IsRangeLike(tok))
		if ok && d > bestDigits {
			best, bestDigits = tok, d
		}
	}
	return best
}
