package reconciler

import (
	"sort"

	"invoice-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// MissingEntry is a key present in one source only
type MissingEntry struct {
	Key    string          `json:"key" yaml:"key"`
	Label  string          `json:"label" yaml:"label"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// Mismatch is a key present in both sources whose amounts differ at cents
type Mismatch struct {
	Key           string          `json:"key" yaml:"key"`
	Label         string          `json:"label" yaml:"label"`
	TrackerAmount decimal.Decimal `json:"tracker_amount" yaml:"tracker_amount"`
	LedgerAmount  decimal.Decimal `json:"ledger_amount" yaml:"ledger_amount"`
	// Difference is tracker minus ledger
	Difference decimal.Decimal `json:"difference" yaml:"difference"`
}

// ComparisonResult holds the disjoint outcome sets of one comparison
type ComparisonResult struct {
	// Matched keys are present in both with equal amounts at cents.
	Matched            []MissingEntry `json:"matched" yaml:"matched"`
	MissingFromLedger  []MissingEntry `json:"missing_from_ledger" yaml:"missing_from_ledger"`
	Mismatches         []Mismatch     `json:"mismatches" yaml:"mismatches"`
	MissingFromTracker []MissingEntry `json:"missing_from_tracker" yaml:"missing_from_tracker"`
}

// Compare classifies every key of both aggregates. Missing-from-ledger and
// mismatches come out in key order; missing-from-tracker in label order.
// No key appears in more than one set.
func Compare(tracker, ledger *Aggregate) *ComparisonResult {
	result := &ComparisonResult{
		Matched:            []MissingEntry{},
		MissingFromLedger:  []MissingEntry{},
		Mismatches:         []Mismatch{},
		MissingFromTracker: []MissingEntry{},
	}

	for _, key := range tracker.Keys() {
		t, _ := tracker.Get(key)
		l, inLedger := ledger.Get(key)

		if !inLedger {
			result.MissingFromLedger = append(result.MissingFromLedger, MissingEntry{Key: key, Label: t.Label, Amount: t.Amount})
			continue
		}

		if models.Round2(t.Amount).Equal(models.Round2(l.Amount)) {
			result.Matched = append(result.Matched, MissingEntry{Key: key, Label: t.Label, Amount: t.Amount})
			continue
		}

		label := t.Label
		if label == "" {
			label = l.Label
		}
		result.Mismatches = append(result.Mismatches, Mismatch{
			Key:           key,
			Label:         label,
			TrackerAmount: t.Amount,
			LedgerAmount:  l.Amount,
			Difference:    t.Amount.Sub(l.Amount),
		})
	}

	for _, key := range ledger.Keys() {
		if _, inTracker := tracker.Get(key); inTracker {
			continue
		}
		l, _ := ledger.Get(key)
		result.MissingFromTracker = append(result.MissingFromTracker, MissingEntry{Key: key, Label: l.Label, Amount: l.Amount})
	}
	sort.SliceStable(result.MissingFromTracker, func(i, j int) bool {
		return result.MissingFromTracker[i].Label < result.MissingFromTracker[j].Label
	})

	return result
}

func sumMissing(entries []MissingEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

func sumDifferences(entries []Mismatch) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Difference)
	}
	return total
}
