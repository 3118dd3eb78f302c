package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/textnorm"

	"github.com/shopspring/decimal"
)

// trackerRow is a tracker detail row prepared for filename matching
type trackerRow struct {
	Line int
	// Key is the simple invoice key of the row, empty when the invoice number
	// has no long enough digit run.
	Key             string
	RawInvoice      string
	ProviderNorm    string
	ProviderDisplay string
	ConceptNorm     string
	ConceptDisplay  string
	Date            time.Time
	HasDate         bool
	Amount          decimal.Decimal
}

// yymmdd returns the invoice date as it is written in file names
func (r *trackerRow) yymmdd() string {
	if !r.HasDate {
		return ""
	}
	return models.YYMMDD(r.Date)
}

func (r *trackerRow) inMonth(year, month int) bool {
	return r.HasDate && r.Date.Year() == year && int(r.Date.Month()) == month
}

// IndexEntry is the first tracker row seen for a simple invoice key
type IndexEntry struct {
	Key     string          `json:"key" yaml:"key"`
	Display string          `json:"display" yaml:"display"`
	Amount  decimal.Decimal `json:"amount" yaml:"amount"`
}

// TrackerIndex holds the tracker rows in the two shapes the matcher needs:
// a strict key index for exact matches and the full prepared row list for
// the weaker tiers.
type TrackerIndex struct {
	strict      map[string]IndexEntry
	rows        []trackerRow
	hasProvider bool
}

// IndexStats provides statistics about the index
type IndexStats struct {
	Rows        int  `json:"rows"`
	Keys        int  `json:"keys"`
	RowsNoKey   int  `json:"rows_without_key"`
	HasProvider bool `json:"has_provider"`
}

// patterns are the expressions derived from a MatchingConfig
type patterns struct {
	simpleKey *regexp.Regexp
	letters   *regexp.Regexp
	fragment  *regexp.Regexp
}

func compilePatterns(config *MatchingConfig) patterns {
	return patterns{
		simpleKey: regexp.MustCompile(fmt.Sprintf(`\d{%d,}`, config.MinSimpleKeyDigits)),
		letters:   regexp.MustCompile(fmt.Sprintf(`[A-Z]{%d,}`, config.MinProviderTokenLen)),
		fragment:  regexp.MustCompile(fmt.Sprintf(`\d{%d,}`, config.MinFragmentLen)),
	}
}

// simpleInvoiceKey returns the longest digit run of text, the first one on
// ties, or "" when no run is long enough.
func (p patterns) simpleInvoiceKey(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	best := ""
	for _, run := range p.simpleKey.FindAllString(text, -1) {
		if len(run) > len(best) {
			best = run
		}
	}
	return best
}

// NewTrackerIndex prepares the sheet rows for matching
func NewTrackerIndex(sheet models.TrackerDetailSheet, config *MatchingConfig) *TrackerIndex {
	return newTrackerIndex(sheet, config, compilePatterns(config))
}

func newTrackerIndex(sheet models.TrackerDetailSheet, config *MatchingConfig, p patterns) *TrackerIndex {
	index := &TrackerIndex{
		strict:      make(map[string]IndexEntry),
		rows:        make([]trackerRow, 0, len(sheet.Rows)),
		hasProvider: sheet.HasProvider,
	}

	for _, r := range sheet.Rows {
		raw := strings.TrimSpace(r.InvoiceNumber)
		key := p.simpleInvoiceKey(r.InvoiceNumber)
		amount := models.SafeNumber(r.Amount)

		provDisplay := strings.TrimSpace(r.Provider)
		provNorm := textnorm.Fold(provDisplay)
		for _, a := range config.ProviderAliases {
			if provNorm != "" && strings.Contains(provNorm, textnorm.FoldTrim(a.Contains)) {
				// Keep the full name after the short code so tokens of either form hit.
				provDisplay = a.Short
				provNorm = textnorm.FoldTrim(a.Short) + " " + provNorm
				break
			}
		}

		conceptDisplay := strings.TrimSpace(r.Concept)
		date, hasDate := models.ParseCellDate(r.InvoiceDate)

		if key != "" {
			if _, seen := index.strict[key]; !seen {
				index.strict[key] = IndexEntry{Key: key, Display: raw, Amount: amount}
			}
		}

		index.rows = append(index.rows, trackerRow{
			Line:            r.Line,
			Key:             key,
			RawInvoice:      raw,
			ProviderNorm:    provNorm,
			ProviderDisplay: provDisplay,
			ConceptNorm:     textnorm.Fold(conceptDisplay),
			ConceptDisplay:  conceptDisplay,
			Date:            date,
			HasDate:         hasDate,
			Amount:          amount,
		})
	}

	return index
}

// Lookup returns the strict index entry for key
func (ti *TrackerIndex) Lookup(key string) (IndexEntry, bool) {
	e, ok := ti.strict[key]
	return e, ok
}

// Keys returns the strict index keys in ascending order
func (ti *TrackerIndex) Keys() []string {
	keys := make([]string, 0, len(ti.strict))
	for k := range ti.strict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetStats returns statistics about the index
func (ti *TrackerIndex) GetStats() IndexStats {
	noKey := 0
	for _, r := range ti.rows {
		if r.Key == "" {
			noKey++
		}
	}
	return IndexStats{
		Rows:        len(ti.rows),
		Keys:        len(ti.strict),
		RowsNoKey:   noKey,
		HasProvider: ti.hasProvider,
	}
}

