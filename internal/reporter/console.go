package reporter

import (
	"fmt"
	"io"
	"sort"
	"time"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/reconciler"
)

func (rg *ReportGenerator) reconciliationConsole(result *reconciler.ReconciliationResult, writer io.Writer) error {
	fmt.Fprintf(writer, "RECONCILIATION REPORT\n")
	if result.SourceName != "" {
		fmt.Fprintf(writer, "Source:    %s\n", result.SourceName)
	}
	fmt.Fprintf(writer, "Company:   %s\n", orAll(result.Filter.Company))
	period := result.Filter.Period.String()
	if result.Filter.Period.Inferred {
		period += " (from file name)"
	}
	fmt.Fprintf(writer, "Period:    %s\n", period)
	fmt.Fprintf(writer, "Generated: %s\n", result.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration:  %v\n\n", result.Duration)

	if s := result.Summary; s != nil {
		fmt.Fprintf(writer, "=== SUMMARY ===\n")
		rg.printSummary(s, writer)
		fmt.Fprintf(writer, "\n")
	}

	if c := result.Comparison; c != nil {
		if len(c.MissingFromLedger) > 0 {
			fmt.Fprintf(writer, "=== IN TRACKER, MISSING FROM LEDGER (%d) ===\n", len(c.MissingFromLedger))
			rg.printEntries(c.MissingFromLedger, writer)
			fmt.Fprintf(writer, "\n")
		}

		if len(c.Mismatches) > 0 {
			fmt.Fprintf(writer, "=== AMOUNT MISMATCHES (%d) ===\n", len(c.Mismatches))
			rg.printMismatches(c.Mismatches, writer)
			fmt.Fprintf(writer, "\n")
		}

		if len(c.MissingFromTracker) > 0 {
			fmt.Fprintf(writer, "=== IN LEDGER, MISSING FROM TRACKER (%d) ===\n", len(c.MissingFromTracker))
			rg.printEntries(c.MissingFromTracker, writer)
			fmt.Fprintf(writer, "\n")
		}

		if rg.config.IncludeMatched && len(c.Matched) > 0 {
			fmt.Fprintf(writer, "=== MATCHED (%d) ===\n", len(c.Matched))
			rg.printEntries(c.Matched, writer)
			fmt.Fprintf(writer, "\n")
		}
	}

	if rg.config.IncludeStats {
		fmt.Fprintf(writer, "=== ROW STATISTICS ===\n")
		printStats("Ledger", result.LedgerStats, writer)
		printStats("Tracker", result.TrackerStats, writer)
	}

	return nil
}

func (rg *ReportGenerator) printSummary(s *reconciler.ResultSummary, writer io.Writer) {
	fmt.Fprintf(writer, "Invoices in tracker:          %d\n", s.TrackerKeys)
	fmt.Fprintf(writer, "Invoices in ledger:           %d\n", s.LedgerKeys)
	fmt.Fprintf(writer, "Matched:                      %d\n", s.MatchedCount)
	fmt.Fprintf(writer, "Missing from ledger:          %d (%s)\n", s.MissingFromLedgerCount, s.MissingFromLedgerAmount.StringFixed(2))
	fmt.Fprintf(writer, "Amount mismatches:            %d (%s)\n", s.MismatchCount, s.MismatchDifference.StringFixed(2))
	fmt.Fprintf(writer, "Missing from tracker:         %d (%s)\n", s.MissingFromTrackerCount, s.MissingFromTrackerAmount.StringFixed(2))
	fmt.Fprintf(writer, "\nTotal tracker amount:         %s\n", s.TotalTrackerAmount.StringFixed(2))
	fmt.Fprintf(writer, "Total ledger amount:          %s\n", s.TotalLedgerAmount.StringFixed(2))
	fmt.Fprintf(writer, "Net difference:               %s\n", s.NetDifference.StringFixed(2))
}

func (rg *ReportGenerator) printEntries(entries []reconciler.MissingEntry, writer io.Writer) {
	for i, e := range entries {
		if rg.truncated(i, len(entries), writer) {
			break
		}
		fmt.Fprintf(writer, "  %d. %s  %s\n", i+1, e.Label, e.Amount.StringFixed(2))
	}
}

func (rg *ReportGenerator) printMismatches(mismatches []reconciler.Mismatch, writer io.Writer) {
	for i, m := range mismatches {
		if rg.truncated(i, len(mismatches), writer) {
			break
		}
		fmt.Fprintf(writer, "  %d. %s  tracker %s, ledger %s, difference %s\n",
			i+1,
			m.Label,
			m.TrackerAmount.StringFixed(2),
			m.LedgerAmount.StringFixed(2),
			m.Difference.StringFixed(2))
	}
}

func printStats(name string, stats *reconciler.AggregationStats, writer io.Writer) {
	if stats == nil {
		return
	}
	fmt.Fprintf(writer, "%s: %d read, %d kept", name, stats.RowsRead, stats.RowsKept)
	if stats.Fallback > 0 {
		fmt.Fprintf(writer, ", %d keyed from other columns", stats.Fallback)
	}
	fmt.Fprintf(writer, "\n")

	reasons := make([]string, 0, len(stats.Skipped))
	for r := range stats.Skipped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(writer, "  skipped %-18s %d\n", r+":", stats.Skipped[reconciler.SkipReason(r)])
	}
}

func (rg *ReportGenerator) matchConsole(result *matcher.Result, writer io.Writer) error {
	fmt.Fprintf(writer, "FILE MATCHING REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n\n", result.ProcessedAt.Format(time.RFC3339))

	s := result.Summary
	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Files:              %d\n", s.Files)
	fmt.Fprintf(writer, "Matched:            %d (%.1f%%)\n", s.Matched, percentage(s.Matched, s.Files))
	fmt.Fprintf(writer, "Unmatched:          %d (%.1f%%)\n", s.Unmatched, percentage(s.Unmatched, s.Files))
	fmt.Fprintf(writer, "Invoices w/o file:  %d\n", s.Unclaimed)

	tiers := make([]string, 0, len(s.ByTier))
	for t := range s.ByTier {
		tiers = append(tiers, t)
	}
	sort.Strings(tiers)
	for _, t := range tiers {
		fmt.Fprintf(writer, "  %-26s %d\n", t+":", s.ByTier[t])
	}
	fmt.Fprintf(writer, "\n")

	if len(result.Matches) > 0 {
		fmt.Fprintf(writer, "=== MATCHED FILES (%d) ===\n", len(result.Matches))
		for i, m := range result.Matches {
			if rg.truncated(i, len(result.Matches), writer) {
				break
			}
			fmt.Fprintf(writer, "  %d. %s -> %s [%s]\n", i+1, m.File, m.Invoice, m.Tier)
			if len(m.Evidence) > 0 {
				fmt.Fprintf(writer, "     %s\n", matcher.FormatEvidence(m.Evidence))
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(result.Unmatched) > 0 {
		fmt.Fprintf(writer, "=== UNMATCHED FILES (%d) ===\n", len(result.Unmatched))
		for i, u := range result.Unmatched {
			if rg.truncated(i, len(result.Unmatched), writer) {
				break
			}
			fmt.Fprintf(writer, "  %d. %s: %s\n", i+1, u.File, u.Message)
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(result.Unclaimed) > 0 {
		fmt.Fprintf(writer, "=== TRACKER INVOICES WITHOUT FILE (%d) ===\n", len(result.Unclaimed))
		for i, u := range result.Unclaimed {
			if rg.truncated(i, len(result.Unclaimed), writer) {
				break
			}
			fmt.Fprintf(writer, "  %d. %s  %s\n", i+1, u.Label, u.Amount.StringFixed(2))
		}
	}

	return nil
}

func (rg *ReportGenerator) breakdownConsole(result *reconciler.BreakdownResult, writer io.Writer) error {
	fmt.Fprintf(writer, "ACCOUNT BREAKDOWN\n")
	fmt.Fprintf(writer, "Rows read: %d, skipped: %d\n\n", result.RowsRead, result.RowsSkipped)

	account := ""
	for i, e := range result.Entries {
		if rg.truncated(i, len(result.Entries), writer) {
			break
		}
		if e.Account != account {
			account = e.Account
			fmt.Fprintf(writer, "%s\n", account)
		}
		fmt.Fprintf(writer, "  %-40s %14s  (%d)\n", e.Concept, e.Amount.StringFixed(2), e.Rows)
	}

	fmt.Fprintf(writer, "\nTotal: %s\n", result.Total.StringFixed(2))
	return nil
}

// truncated prints the overflow line once i reaches the configured cap
func (rg *ReportGenerator) truncated(i, total int, writer io.Writer) bool {
	limit := rg.config.MaxListItems
	if limit == 0 || i < limit {
		return false
	}
	fmt.Fprintf(writer, "  ... and %d more\n", total-limit)
	return true
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}
