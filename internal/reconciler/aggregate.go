package reconciler

import (
	"sort"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/tokens"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Entry is the running total for one invoice key
type Entry struct {
	Key    string          `json:"key" yaml:"key"`
	Label  string          `json:"label" yaml:"label"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
	Rows   int             `json:"rows" yaml:"rows"`
}

// Aggregate maps invoice keys to summed amounts. The first label seen for a
// key is kept as its display label.
type Aggregate struct {
	entries map[string]*Entry
}

// NewAggregate returns an empty aggregate
func NewAggregate() *Aggregate {
	return &Aggregate{entries: make(map[string]*Entry)}
}

// Add accumulates amount under key. Empty keys are rejected and Add reports
// false.
func (a *Aggregate) Add(key, label string, amount decimal.Decimal) bool {
	if key == "" {
		return false
	}
	if e, ok := a.entries[key]; ok {
		e.Amount = e.Amount.Add(amount)
		e.Rows++
		return true
	}
	a.entries[key] = &Entry{Key: key, Label: label, Amount: amount, Rows: 1}
	return true
}

// Get returns a copy of the entry for key
func (a *Aggregate) Get(key string) (Entry, bool) {
	e, ok := a.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of distinct keys
func (a *Aggregate) Len() int {
	return len(a.entries)
}

// Keys returns all keys in ascending order
func (a *Aggregate) Keys() []string {
	keys := make([]string, 0, len(a.entries))
	for k := range a.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns copies of all entries in key order
func (a *Aggregate) Entries() []Entry {
	out := make([]Entry, 0, len(a.entries))
	for _, k := range a.Keys() {
		out = append(out, *a.entries[k])
	}
	return out
}

// Total sums every entry
func (a *Aggregate) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range a.entries {
		total = total.Add(e.Amount)
	}
	return total
}

// SkipReason explains why a row did not contribute to an aggregate
type SkipReason string

const (
	SkipAccount    SkipReason = "account_filtered"
	SkipZeroCredit SkipReason = "zero_credit"
	SkipPeriod     SkipReason = "outside_period"
	SkipCompany    SkipReason = "other_company"
	SkipPhase      SkipReason = "phase_filtered"
	SkipNoToken    SkipReason = "no_token"
)

// AggregationStats counts what happened to each input row
type AggregationStats struct {
	RowsRead int                `json:"rows_read" yaml:"rows_read"`
	RowsKept int                `json:"rows_kept" yaml:"rows_kept"`
	Fallback int                `json:"fallback_tokens" yaml:"fallback_tokens"`
	Skipped  map[SkipReason]int `json:"skipped" yaml:"skipped"`
}

func newStats() *AggregationStats {
	return &AggregationStats{Skipped: make(map[SkipReason]int)}
}

func (s *AggregationStats) skip(reason SkipReason) {
	s.Skipped[reason]++
}

// Aggregator builds the key to amount maps for both sources
type Aggregator struct {
	config *Config
	logger logger.Logger
}

// NewAggregator creates an aggregator using config
func NewAggregator(config *Config) *Aggregator {
	return &Aggregator{
		config: config,
		logger: logger.WithComponent("aggregator"),
	}
}

// Ledger aggregates credit amounts of ledger rows that pass the account,
// credit, period and company filters.
func (ag *Aggregator) Ledger(sheet models.LedgerSheet, filter Filter) (*Aggregate, *AggregationStats) {
	agg := NewAggregate()
	stats := newStats()
	sel := ag.config.Selector

	for _, row := range sheet.Rows {
		stats.RowsRead++

		if !ag.config.accountAccepted(row.Account) {
			stats.skip(SkipAccount)
			continue
		}

		credit := models.SafeNumber(row.Credit)
		if credit.Abs().LessThan(ag.config.CreditEpsilon) {
			stats.skip(SkipZeroCredit)
			continue
		}

		if !filter.Period.Contains(row.Date) {
			stats.skip(SkipPeriod)
			continue
		}

		if sheet.HasCompany && !CompanyMatches(row.Company, filter.Company) {
			stats.skip(SkipCompany)
			continue
		}

		token := sel.Pick(row.Document, row.Concept)
		if !sel.Usable(token) {
			fallback := sel.BestInCells(row.Extra)
			if fallback == "" || tokens.MatchKey(fallback) == "" {
				ag.logger.WithField("line", row.Line).Debugf("no invoice token in ledger row (document %q)", row.Document)
				stats.skip(SkipNoToken)
				continue
			}
			token = fallback
			stats.Fallback++
		}

		agg.Add(tokens.MatchKey(token), tokens.DisplayKey(token), credit)
		stats.RowsKept++
	}

	ag.logger.WithField("keys", agg.Len()).Debugf("ledger aggregated: %d of %d rows kept", stats.RowsKept, stats.RowsRead)
	return agg, stats
}

// Tracker aggregates invoice amounts of tracker rows in an accepted phase
// that belong to the filtered company.
func (ag *Aggregator) Tracker(sheet models.TrackerSheet, filter Filter) (*Aggregate, *AggregationStats) {
	agg := NewAggregate()
	stats := newStats()

	for _, row := range sheet.Rows {
		stats.RowsRead++

		if !ag.config.phaseAccepted(row.Phase) {
			stats.skip(SkipPhase)
			continue
		}

		if sheet.HasCompany && !CompanyMatches(row.Company, filter.Company) {
			stats.skip(SkipCompany)
			continue
		}

		token := tokens.Extract(row.InvoiceNumber)
		key := tokens.MatchKey(token)
		if token == "" || key == "" {
			stats.skip(SkipNoToken)
			continue
		}

		agg.Add(key, tokens.DisplayKey(token), models.SafeNumber(row.Amount))
		stats.RowsKept++
	}

	ag.logger.WithField("keys", agg.Len()).Debugf("tracker aggregated: %d of %d rows kept", stats.RowsKept, stats.RowsRead)
	return agg, stats
}
