package matcher

import (
	"regexp"
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/textnorm"

	"github.com/shopspring/decimal"
)

var (
	reAmountText = regexp.MustCompile(`\d[\d.]{3,}`)
	reWords2     = regexp.MustCompile(`[A-Z0-9]{2,}`)
	reWords3     = regexp.MustCompile(`[A-Z0-9]{3,}`)
)

// parseFileAmount reads an amount written in a file name. Dots group
// thousands unless the last group has exactly two digits, which are then the
// cents: "3.084.741.33" is 3084741.33 and "2.420" is 2420.
func parseFileAmount(text string) (decimal.Decimal, bool) {
	clean := strings.TrimRight(strings.TrimSpace(text), ".,")
	if clean == "" {
		return decimal.Zero, false
	}
	parts := strings.Split(clean, ".")
	normalized := strings.Join(parts, "")
	if last := parts[len(parts)-1]; len(parts) >= 2 && len(last) == 2 {
		normalized = strings.Join(parts[:len(parts)-1], "") + "." + last
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// formatAmount renders an amount with at most two decimals and a decimal
// comma, the way amounts are written on Spanish invoices.
func formatAmount(d decimal.Decimal) string {
	return strings.Replace(d.Round(2).String(), ".", ",", 1)
}

// amountsAgree accepts a cent difference within tolerance, or equal whole units
func amountsAgree(row, file, tolerance decimal.Decimal) bool {
	if models.Round2(row).Sub(models.Round2(file)).Abs().LessThanOrEqual(tolerance) {
		return true
	}
	return row.RoundBank(0).Equal(file.RoundBank(0))
}

// wordIn returns the longest word of text matched by re that occurs in haystack
func wordIn(re *regexp.Regexp, text, haystack string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return firstContained(byLengthDesc(re.FindAllString(textnorm.Fold(text), -1)), haystack)
}

// amountPass rescues files whose name carries a tracker amount plus other
// independent evidence
type amountPass struct{ rules }

func (t amountPass) tier() Tier { return TierAmount }

func (t amountPass) apply(c *fileCandidate, rows []trackerRow) verdict {
	texts := reAmountText.FindAllString(c.base, -1)
	if len(texts) == 0 {
		return verdict{}
	}

	for i := range rows {
		row := &rows[i]
		if !row.Amount.IsPositive() {
			continue
		}
		for _, text := range texts {
			amount, ok := parseFileAmount(text)
			if !ok || !amountsAgree(row.Amount, amount, t.config.AmountTolerance) {
				continue
			}

			ev := evidenceSet{amount: formatAmount(amount)}
			ev.provider = wordIn(reWords2, row.ProviderDisplay, c.folded)
			if ev.provider == "" {
				ev.provider = wordIn(reWords2, row.ProviderNorm, c.folded)
			}
			ev.invoice = t.fragmentIn(row.RawInvoice, c.base, true, true)
			ev.concept = wordIn(reWords3, row.ConceptDisplay, c.folded)
			if date := row.yymmdd(); date != "" && strings.Contains(c.base, date) {
				ev.date = date
			}

			if ev.count() >= t.config.MinAmountSignals {
				return verdict{
					outcome:  outcomeMatched,
					row:      row,
					evidence: ev.ordered(EvidenceAmount, EvidenceProvider, EvidenceConcept, EvidenceInvoice, EvidenceDate),
				}
			}
		}
	}
	return verdict{}
}
