package reconciler

import (
	"sort"
	"strings"

	"invoice-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// BreakdownEntry is the summed amount of one (account, concept) pair
type BreakdownEntry struct {
	Account string          `json:"account" yaml:"account"`
	Concept string          `json:"concept" yaml:"concept"`
	Amount  decimal.Decimal `json:"amount" yaml:"amount"`
	Rows    int             `json:"rows" yaml:"rows"`
}

// BreakdownResult lists ledger totals per account and concept
type BreakdownResult struct {
	RunID       string           `json:"run_id" yaml:"run_id"`
	Entries     []BreakdownEntry `json:"entries" yaml:"entries"`
	Total       decimal.Decimal  `json:"total" yaml:"total"`
	RowsRead    int              `json:"rows_read" yaml:"rows_read"`
	RowsSkipped int              `json:"rows_skipped" yaml:"rows_skipped"`
}

type breakdownKey struct {
	account, concept string
}

// BuildBreakdown groups rows by trimmed account and concept and sums their
// amounts. Rows with both fields blank are skipped. Entries are ordered by
// account, then concept.
func BuildBreakdown(rows []models.BreakdownRow) *BreakdownResult {
	result := &BreakdownResult{Entries: []BreakdownEntry{}, Total: decimal.Zero}
	sums := make(map[breakdownKey]*BreakdownEntry)

	for _, row := range rows {
		result.RowsRead++
		account := strings.TrimSpace(row.Account)
		concept := strings.TrimSpace(row.Concept)
		if account == "" && concept == "" {
			result.RowsSkipped++
			continue
		}

		amount := models.SafeNumber(row.Amount)
		k := breakdownKey{account, concept}
		if e, ok := sums[k]; ok {
			e.Amount = e.Amount.Add(amount)
			e.Rows++
		} else {
			sums[k] = &BreakdownEntry{Account: account, Concept: concept, Amount: amount, Rows: 1}
		}
		result.Total = result.Total.Add(amount)
	}

	for _, e := range sums {
		result.Entries = append(result.Entries, *e)
	}
	sort.Slice(result.Entries, func(i, j int) bool {
		a, b := result.Entries[i], result.Entries[j]
		if a.Account != b.Account {
			return a.Account < b.Account
		}
		return a.Concept < b.Concept
	})
	return result
}
