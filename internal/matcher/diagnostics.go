package matcher

import (
	"strings"

	"invoice-reconciliation-service/internal/textnorm"
)

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// invoiceHint looks for the whole invoice number in the file name, then for
// its zero stripped fragments, ignoring case.
func (r rules) invoiceHint(raw, base string) string {
	if len(raw) >= r.config.MinFragmentLen && textnorm.ContainsFold(base, raw) {
		return raw
	}
	for _, frag := range r.p.fragment.FindAllString(raw, -1) {
		nz := strings.TrimLeft(frag, "0")
		if len(nz) < r.config.MinFragmentLen || r.config.excluded(nz) {
			continue
		}
		if textnorm.ContainsFold(base, nz) {
			return nz
		}
	}
	return ""
}

// bestPartialEvidence scores every row by the signals it shares with the file
// name and returns the evidence of the best one. The first row wins ties.
// It returns nil when no row shares anything.
func (r rules) bestPartialEvidence(c *fileCandidate, rows []trackerRow) []Evidence {
	digits := onlyDigits(c.base)
	var best evidenceSet
	bestScore := 0

	for i := range rows {
		row := &rows[i]
		var ev evidenceSet
		ev.provider = wordIn(reWords3, row.ProviderDisplay, c.folded)
		ev.invoice = r.invoiceHint(row.RawInvoice, c.base)
		ev.concept = wordIn(reWords3, row.ConceptDisplay, c.folded)
		if !row.Amount.IsZero() {
			text := formatAmount(row.Amount)
			if d := onlyDigits(text); len(d) >= 3 && strings.Contains(digits, d) {
				ev.amount = text
			}
		}
		if date := row.yymmdd(); date != "" && strings.Contains(c.base, date) {
			ev.date = date
		}

		if score := ev.count(); score > bestScore {
			bestScore = score
			best = ev
		}
	}

	if bestScore == 0 {
		return nil
	}
	return best.ordered(EvidenceProvider, EvidenceInvoice, EvidenceConcept, EvidenceAmount, EvidenceDate)
}
