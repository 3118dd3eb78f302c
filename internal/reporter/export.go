package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/reconciler"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// sheet is one rectangular block of output, a CSV file or a worksheet.
// Cells are strings, ints or decimals.
type sheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

func (s *sheet) add(cells ...interface{}) {
	s.rows = append(s.rows, cells)
}

// CSV section labels
const (
	sectionMatched            = "matched"
	sectionMissingFromLedger  = "missing_from_ledger"
	sectionMismatch           = "mismatch"
	sectionMissingFromTracker = "missing_from_tracker"
)

func (rg *ReportGenerator) reconciliationTable(result *reconciler.ReconciliationResult) sheet {
	t := sheet{
		name:   "Reconciliation",
		header: []string{"section", "key", "label", "tracker_amount", "ledger_amount", "difference"},
	}
	c := result.Comparison
	if c == nil {
		return t
	}

	if rg.config.IncludeMatched {
		for _, e := range c.Matched {
			t.add(sectionMatched, e.Key, e.Label, e.Amount, "", "")
		}
	}
	for _, e := range c.MissingFromLedger {
		t.add(sectionMissingFromLedger, e.Key, e.Label, e.Amount, "", e.Amount)
	}
	for _, m := range c.Mismatches {
		t.add(sectionMismatch, m.Key, m.Label, m.TrackerAmount, m.LedgerAmount, m.Difference)
	}
	for _, e := range c.MissingFromTracker {
		t.add(sectionMissingFromTracker, e.Key, e.Label, "", e.Amount, e.Amount.Neg())
	}
	return t
}

func (rg *ReportGenerator) reconciliationSheets(result *reconciler.ReconciliationResult) []sheet {
	summary := sheet{name: "Summary", header: []string{"item", "value"}}
	summary.add("company", orAll(result.Filter.Company))
	summary.add("period", result.Filter.Period.String())
	if s := result.Summary; s != nil {
		summary.add("tracker invoices", s.TrackerKeys)
		summary.add("ledger invoices", s.LedgerKeys)
		summary.add("matched", s.MatchedCount)
		summary.add("missing from ledger", s.MissingFromLedgerCount)
		summary.add("mismatches", s.MismatchCount)
		summary.add("missing from tracker", s.MissingFromTrackerCount)
		summary.add("total tracker amount", s.TotalTrackerAmount)
		summary.add("total ledger amount", s.TotalLedgerAmount)
		summary.add("net difference", s.NetDifference)
	}
	sheets := []sheet{summary}

	c := result.Comparison
	if c == nil {
		return sheets
	}

	missingLedger := sheet{name: "Missing from ledger", header: []string{"invoice", "amount"}}
	for _, e := range c.MissingFromLedger {
		missingLedger.add(e.Label, e.Amount)
	}
	mismatches := sheet{name: "Mismatches", header: []string{"invoice", "tracker", "ledger", "difference"}}
	for _, m := range c.Mismatches {
		mismatches.add(m.Label, m.TrackerAmount, m.LedgerAmount, m.Difference)
	}
	missingTracker := sheet{name: "Missing from tracker", header: []string{"invoice", "amount"}}
	for _, e := range c.MissingFromTracker {
		missingTracker.add(e.Label, e.Amount)
	}
	sheets = append(sheets, missingLedger, mismatches, missingTracker)

	if rg.config.IncludeMatched {
		matched := sheet{name: "Matched", header: []string{"invoice", "amount"}}
		for _, e := range c.Matched {
			matched.add(e.Label, e.Amount)
		}
		sheets = append(sheets, matched)
	}
	return sheets
}

func matchTable(result *matcher.Result) sheet {
	t := sheet{
		name:   "Matching",
		header: []string{"status", "file", "tier", "invoice", "key", "detail"},
	}
	for _, m := range result.Matches {
		t.add("matched", m.File, m.Tier.String(), m.Invoice, m.Key, matcher.FormatEvidence(m.Evidence))
	}
	for _, u := range result.Unmatched {
		t.add("unmatched", u.File, "", "", "", u.Message)
	}
	for _, u := range result.Unclaimed {
		t.add("unclaimed", "", "", u.Label, u.Key, u.Amount)
	}
	return t
}

func matchSheets(result *matcher.Result) []sheet {
	matches := sheet{name: "Matches", header: []string{"file", "tier", "invoice", "evidence"}}
	for _, m := range result.Matches {
		matches.add(m.File, m.Tier.String(), m.Invoice, matcher.FormatEvidence(m.Evidence))
	}
	unmatched := sheet{name: "Unmatched", header: []string{"file", "reason", "message"}}
	for _, u := range result.Unmatched {
		unmatched.add(u.File, string(u.Reason), u.Message)
	}
	unclaimed := sheet{name: "Unclaimed", header: []string{"invoice", "amount"}}
	for _, u := range result.Unclaimed {
		unclaimed.add(u.Label, u.Amount)
	}
	return []sheet{matches, unmatched, unclaimed}
}

func breakdownTable(result *reconciler.BreakdownResult) sheet {
	t := sheet{name: "Breakdown", header: []string{"account", "concept", "amount", "rows"}}
	for _, e := range result.Entries {
		t.add(e.Account, e.Concept, e.Amount, e.Rows)
	}
	t.add("TOTAL", "", result.Total, result.RowsRead-result.RowsSkipped)
	return t
}

func (rg *ReportGenerator) writeCSV(t sheet, writer io.Writer) error {
	w := csv.NewWriter(writer)
	w.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := w.Write(t.header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	record := make([]string, len(t.header))
	for _, row := range t.rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = csvValue(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func csvValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return x.StringFixed(2)
	default:
		return fmt.Sprint(x)
	}
}

// xlsxValue keeps amounts numeric so the workbook can be summed
func xlsxValue(v interface{}) interface{} {
	if d, ok := v.(decimal.Decimal); ok {
		return d.Round(2).InexactFloat64()
	}
	return v
}

func writeXLSX(sheets []sheet, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to name worksheet %q: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to add worksheet %q: %w", s.name, err)
		}

		header := make([]interface{}, len(s.header))
		for j, h := range s.header {
			header[j] = h
		}
		if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write worksheet %q: %w", s.name, err)
		}

		for r, row := range s.rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = xlsxValue(v)
			}
			ref, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, ref, &cells); err != nil {
				return fmt.Errorf("failed to write worksheet %q: %w", s.name, err)
			}
		}
	}

	f.SetActiveSheet(0)
	return f.Write(writer)
}
