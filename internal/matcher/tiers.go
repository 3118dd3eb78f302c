package matcher

import (
	"strings"
)

// outcome is what a tier concluded for one file
type outcome int

const (
	// outcomeNone lets the next tier try
	outcomeNone outcome = iota
	outcomeMatched
	// outcomeRejected stops the chain: a row was found but the evidence is
	// too weak to accept it
	outcomeRejected
)

type verdict struct {
	outcome  outcome
	row      *trackerRow
	evidence []Evidence
}

// strategy is one evidence tier of the chain
type strategy interface {
	tier() Tier
	apply(c *fileCandidate, rows []trackerRow) verdict
}

// rules bundles the configuration and compiled patterns shared by the tiers
type rules struct {
	config *MatchingConfig
	p      patterns
}

// fragmentIn returns the first invoice number fragment of raw found in base.
// Calendar years are skipped when skipExcluded is set. With zeroFallback a
// fragment absent from base is retried without its leading zeros.
func (r rules) fragmentIn(raw, base string, skipExcluded, zeroFallback bool) string {
	for _, frag := range r.p.fragment.FindAllString(raw, -1) {
		if skipExcluded && r.config.excluded(frag) {
			continue
		}
		cand := frag
		if zeroFallback && !strings.Contains(base, cand) {
			if nz := strings.TrimLeft(frag, "0"); len(nz) >= r.config.MinFragmentLen {
				cand = nz
			}
		}
		if strings.Contains(base, cand) {
			return cand
		}
	}
	return ""
}

// prefixFragmentIn is fragmentIn for long zero padded numbers: each fragment
// is tried without leading zeros, then by its shortest prefixes.
func (r rules) prefixFragmentIn(raw, base string) string {
	minLen := r.config.MinFragmentLen
	for _, frag := range r.p.fragment.FindAllString(raw, -1) {
		var cands []string
		if nz := strings.TrimLeft(frag, "0"); len(nz) >= minLen {
			cands = append(cands, nz, nz[:minLen])
			if len(nz) > minLen {
				cands = append(cands, nz[:minLen+1])
			}
		} else {
			cands = append(cands, frag)
		}

		for _, cand := range distinct(cands) {
			if len(cand) < minLen || r.config.excluded(cand) {
				continue
			}
			if strings.Contains(base, cand) {
				return cand
			}
		}
	}
	return ""
}

// pickSameMonth returns the first candidate, preferring the first one dated
// in the month written in the file name when there is a choice.
func pickSameMonth(candidates []*trackerRow, c *fileCandidate) *trackerRow {
	if len(candidates) > 1 && c.hasMonth {
		for _, row := range candidates {
			if row.inMonth(c.year, c.month) {
				return row
			}
		}
	}
	return candidates[0]
}

// providerInvoiceTier matches a provider token plus an invoice fragment
type providerInvoiceTier struct{ rules }

func (t providerInvoiceTier) tier() Tier { return TierProviderInvoice }

func (t providerInvoiceTier) apply(c *fileCandidate, rows []trackerRow) verdict {
	var candidates []*trackerRow
	for i := range rows {
		row := &rows[i]
		if firstContained(c.expanded, row.ProviderNorm) == "" {
			continue
		}
		if t.fragmentIn(row.RawInvoice, c.base, true, false) == "" {
			continue
		}
		// Three letter providers are too ambiguous without the exact date.
		if firstContained(c.delimited, row.ProviderNorm) != "" && !c.hasDate(row.yymmdd()) {
			continue
		}
		candidates = append(candidates, row)
	}
	if len(candidates) == 0 {
		return verdict{}
	}

	winner := pickSameMonth(candidates, c)
	var ev evidenceSet
	ev.invoice = t.fragmentIn(winner.RawInvoice, c.base, true, false)
	token := firstContained(c.expanded, winner.ProviderNorm)
	ev.provider = c.span(token)

	if token != "" && len(token) <= t.config.ShortProviderMaxLen {
		if c.hasDate(winner.yymmdd()) {
			ev.date = winner.yymmdd()
		}
		ev.concept = firstContained(byLengthDesc(c.tokens), winner.ConceptNorm)
		if ev.count() < t.config.MinShortProviderEvidence {
			return verdict{
				outcome:  outcomeRejected,
				row:      winner,
				evidence: ev.ordered(EvidenceProvider, EvidenceInvoice, EvidenceDate, EvidenceConcept),
			}
		}
	}

	var evidence []Evidence
	switch {
	case ev.date != "" && ev.provider != "" && ev.invoice != "":
		evidence = ev.ordered(EvidenceDate, EvidenceProvider, EvidenceInvoice)
	case ev.concept != "" && ev.provider != "" && ev.invoice != "":
		evidence = ev.ordered(EvidenceConcept, EvidenceProvider, EvidenceInvoice)
	default:
		evidence = ev.ordered(EvidenceProvider, EvidenceInvoice)
	}
	return verdict{outcome: outcomeMatched, row: winner, evidence: evidence}
}

// conceptProviderTier requires concept, provider and invoice evidence together
type conceptProviderTier struct{ rules }

func (t conceptProviderTier) tier() Tier { return TierConceptProviderInvoice }

func (t conceptProviderTier) apply(c *fileCandidate, rows []trackerRow) verdict {
	var candidates []*trackerRow
	found := make(map[*trackerRow]evidenceSet)
	for i := range rows {
		row := &rows[i]
		if row.ConceptNorm == "" || row.ProviderNorm == "" {
			continue
		}
		var ev evidenceSet
		if ev.concept = firstContained(c.tokens, row.ConceptNorm); ev.concept == "" {
			continue
		}
		if ev.provider = firstContained(c.tokens, row.ProviderNorm); ev.provider == "" {
			continue
		}
		if ev.invoice = t.fragmentIn(row.RawInvoice, c.base, false, true); ev.invoice == "" {
			continue
		}
		candidates = append(candidates, row)
		found[row] = ev
	}
	if len(candidates) == 0 {
		return verdict{}
	}

	winner := pickSameMonth(candidates, c)
	ev := found[winner]
	ev.concept = c.span(ev.concept)
	ev.provider = c.span(ev.provider)
	return verdict{
		outcome:  outcomeMatched,
		row:      winner,
		evidence: ev.ordered(EvidenceConcept, EvidenceProvider, EvidenceInvoice),
	}
}

// dateProviderTier requires the invoice date written as YYMMDD in the name
// along with provider and invoice evidence
type dateProviderTier struct{ rules }

func (t dateProviderTier) tier() Tier { return TierDateProviderInvoice }

func (t dateProviderTier) apply(c *fileCandidate, rows []trackerRow) verdict {
	if len(c.dates) == 0 {
		return verdict{}
	}
	for i := range rows {
		row := &rows[i]
		var ev evidenceSet
		ev.provider = firstContained(c.tokens, row.ProviderNorm)
		if ev.provider == "" {
			ev.provider = firstContained(c.delimited, row.ProviderNorm)
		}
		if ev.provider == "" {
			continue
		}
		if ev.invoice = t.prefixFragmentIn(row.RawInvoice, c.base); ev.invoice == "" {
			continue
		}
		if !c.hasDate(row.yymmdd()) {
			continue
		}
		ev.date = row.yymmdd()
		return verdict{
			outcome:  outcomeMatched,
			row:      row,
			evidence: ev.ordered(EvidenceDate, EvidenceProvider, EvidenceInvoice),
		}
	}
	return verdict{}
}
