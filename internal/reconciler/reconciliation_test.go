package reconciler

import (
	"context"
	"testing"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

func newService(t *testing.T) *ReconciliationService {
	t.Helper()
	rs, err := NewReconciliationService(nil, nil)
	if err != nil {
		t.Fatalf("NewReconciliationService() error = %v", err)
	}
	return rs
}

func TestReconcile(t *testing.T) {
	rs := newService(t)

	req := &ReconciliationRequest{
		SourceName: "CUADRE_TRAVIA_251105.xlsx",
		Ledger: models.LedgerSheet{
			HasCompany: true,
			Rows: []models.LedgerRow{
				func() models.LedgerRow {
					r := ledgerRow("410001", "REF123456", "", "100.00")
					r.Company = "TRAVIA"
					return r
				}(),
				func() models.LedgerRow {
					r := ledgerRow("400200", "12345678", "", "1234.54")
					r.Company = "Travia Gestión S.L."
					return r
				}(),
				func() models.LedgerRow {
					r := ledgerRow("410001", "87654321", "", "75.00")
					r.Company = "TRAVIA"
					return r
				}(),
				func() models.LedgerRow {
					r := ledgerRow("410001", "55555555", "", "75.00")
					r.Company = "ELIA"
					return r
				}(),
			},
		},
		Tracker: models.TrackerSheet{
			HasCompany: true,
			Rows: []models.TrackerRow{
				func() models.TrackerRow {
					r := trackerRow("REF 123456", "100.00", "VISADO PM")
					r.Company = "Travia Gestión S.L."
					return r
				}(),
				func() models.TrackerRow {
					r := trackerRow("9988776655", "50.00", "CONTABILIZAR FACTURA")
					r.Company = "TRAVIA"
					return r
				}(),
				func() models.TrackerRow {
					r := trackerRow("12345678", "1234.56", "VISADO PM")
					r.Company = "TRAVIA"
					return r
				}(),
			},
		},
	}

	result, err := rs.Reconcile(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if result.Filter.Company != "TRAVIA" {
		t.Errorf("Expected company TRAVIA, got %q", result.Filter.Company)
	}
	if result.Filter.Period != (Period{Year: 2025, Month: 11, Inferred: true}) {
		t.Errorf("Unexpected period %+v", result.Filter.Period)
	}

	c := result.Comparison
	if len(c.Matched) != 1 || c.Matched[0].Key != "123456" {
		t.Errorf("Expected REF123456 to match, got %+v", c.Matched)
	}
	if len(c.MissingFromLedger) != 1 || c.MissingFromLedger[0].Key != "9988776655" {
		t.Errorf("Expected 9988776655 missing from ledger, got %+v", c.MissingFromLedger)
	}
	if len(c.Mismatches) != 1 || !c.Mismatches[0].Difference.Equal(dec("0.02")) {
		t.Errorf("Expected one 0.02 mismatch, got %+v", c.Mismatches)
	}
	if len(c.MissingFromTracker) != 1 || c.MissingFromTracker[0].Key != "87654321" {
		t.Errorf("Expected 87654321 missing from tracker, got %+v", c.MissingFromTracker)
	}

	s := result.Summary
	if s.TrackerKeys != 3 || s.LedgerKeys != 3 {
		t.Errorf("Expected 3 keys on each side, got %d / %d", s.TrackerKeys, s.LedgerKeys)
	}
	if !s.MissingFromLedgerAmount.Equal(dec("50")) || !s.MissingFromTrackerAmount.Equal(dec("75")) {
		t.Errorf("Unexpected missing totals %s / %s", s.MissingFromLedgerAmount, s.MissingFromTrackerAmount)
	}
	if !s.NetDifference.Equal(dec("-24.98")) {
		t.Errorf("Expected net difference -24.98, got %s", s.NetDifference)
	}
	if result.LedgerStats.Skipped[SkipCompany] != 1 {
		t.Errorf("Expected the ELIA ledger row to be skipped, got %v", result.LedgerStats.Skipped)
	}
	if result.RunID == "" {
		t.Error("Expected a run id")
	}
}

func TestReconcileExplicitOverrides(t *testing.T) {
	rs := newService(t)

	req := &ReconciliationRequest{
		SourceName: "CUADRE_TRAVIA_251105.xlsx",
		Year:       2025,
		Month:      10,
		Company:    "elia",
		Ledger: models.LedgerSheet{Rows: []models.LedgerRow{
			ledgerRow("410001", "12345678", "", "10"),
		}},
	}

	result, err := rs.Reconcile(context.Background(), req)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if result.Filter.Company != "ELIA" {
		t.Errorf("Expected explicit company, got %q", result.Filter.Company)
	}
	if result.Filter.Period != (Period{Year: 2025, Month: 10}) {
		t.Errorf("Expected explicit period, got %+v", result.Filter.Period)
	}
	if result.LedgerStats.Skipped[SkipPeriod] != 1 {
		t.Errorf("Expected November row outside October, got %v", result.LedgerStats.Skipped)
	}
}

func TestReconcileIsOrderIndependent(t *testing.T) {
	rs := newService(t)
	ledger := []models.LedgerRow{
		ledgerRow("410001", "12345678", "", "0.10"),
		ledgerRow("410001", "12345678", "", "0.20"),
		ledgerRow("410001", "87654321", "", "99.99"),
		ledgerRow("400001", "REF654321", "", "12.345"),
	}
	tracker := []models.TrackerRow{
		trackerRow("12345678", "0.30", "VISADO PM"),
		trackerRow("REF 654321", "12.34", "VISADO PM"),
		trackerRow("11223344", "1", "VISADO PM"),
	}

	run := func(l []models.LedgerRow, tr []models.TrackerRow) *ComparisonResult {
		result, err := rs.Reconcile(context.Background(), &ReconciliationRequest{
			Ledger:  models.LedgerSheet{Rows: l},
			Tracker: models.TrackerSheet{Rows: tr},
		})
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		return result.Comparison
	}

	forward := run(ledger, tracker)
	reversedLedger := []models.LedgerRow{ledger[3], ledger[2], ledger[1], ledger[0]}
	reversedTracker := []models.TrackerRow{tracker[2], tracker[1], tracker[0]}
	backward := run(reversedLedger, reversedTracker)

	if len(forward.Matched) != 2 || len(backward.Matched) != 2 {
		t.Errorf("Expected 2 matched keys both ways, got %d and %d", len(forward.Matched), len(backward.Matched))
	}
	for i := range forward.Matched {
		if forward.Matched[i].Key != backward.Matched[i].Key || !forward.Matched[i].Amount.Equal(backward.Matched[i].Amount) {
			t.Errorf("Matched[%d] differs: %+v vs %+v", i, forward.Matched[i], backward.Matched[i])
		}
	}
	if len(forward.MissingFromLedger) != 1 || len(forward.MissingFromTracker) != 1 {
		t.Errorf("Unexpected missing sets %+v / %+v", forward.MissingFromLedger, forward.MissingFromTracker)
	}
}

func TestReconciliationRequestValidate(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    int
		wantCode apperrors.ErrorCode
	}{
		{"none", 0, 0, ""},
		{"both", 2025, 11, ""},
		{"month out of range", 2025, 13, apperrors.CodeOutOfRange},
		{"negative year", -1, 0, apperrors.CodeOutOfRange},
		{"year only", 2025, 0, apperrors.CodeMissingField},
		{"month only", 0, 11, apperrors.CodeMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&ReconciliationRequest{Year: tt.year, Month: tt.month}).Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("Validate() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestReconcileErrors(t *testing.T) {
	rs := newService(t)

	if _, err := rs.Reconcile(context.Background(), nil); !apperrors.IsCode(err, apperrors.CodeMissingField) {
		t.Errorf("Expected missing field error for nil request, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rs.Reconcile(ctx, &ReconciliationRequest{}); !apperrors.IsCode(err, apperrors.CodeProcessingError) {
		t.Errorf("Expected processing error for cancelled context, got %v", err)
	}
}

func TestNewReconciliationServiceRejectsInvalidConfig(t *testing.T) {
	bad := DefaultConfig()
	bad.AcceptedPhases = nil
	if _, err := NewReconciliationService(bad, nil); !apperrors.IsCode(err, apperrors.CodeInvalidConfig) {
		t.Errorf("Expected invalid config error, got %v", err)
	}

	badMatching := matcher.DefaultMatchingConfig()
	badMatching.MinAmountSignals = 0
	if _, err := NewReconciliationService(nil, badMatching); !apperrors.IsCode(err, apperrors.CodeInvalidConfig) {
		t.Errorf("Expected invalid matching config error, got %v", err)
	}
}

func TestMatchFiles(t *testing.T) {
	rs := newService(t)
	sheet := models.TrackerDetailSheet{
		HasProvider: true,
		Rows: []models.TrackerDetailRow{
			{Line: 2, InvoiceNumber: "4500012345", Amount: num("10"), Provider: "ACME"},
			{Line: 3, InvoiceNumber: "4500099999", Amount: num("20"), Provider: "ACME"},
		},
	}
	files := models.PdfFilesFromNames([]string{"scans/FRA_4500012345.pdf", ""})

	result, err := rs.MatchFiles(context.Background(), files, sheet)
	if err != nil {
		t.Fatalf("MatchFiles() error = %v", err)
	}
	if len(result.Matches) != 1 || result.Matches[0].Tier != matcher.TierExactKey {
		t.Errorf("Expected one exact key match, got %+v", result.Matches)
	}
	if len(result.Unclaimed) != 1 || result.Unclaimed[0].Key != "4500099999" {
		t.Errorf("Expected 4500099999 unclaimed, got %+v", result.Unclaimed)
	}

	_, err = rs.MatchFiles(context.Background(), []models.PdfFile{{Name: " "}}, sheet)
	if !apperrors.IsCode(err, apperrors.CodeMissingField) {
		t.Errorf("Expected missing field error for blank name, got %v", err)
	}
}

func TestBreakdown(t *testing.T) {
	rs := newService(t)
	rows := []models.BreakdownRow{
		{Account: "410001", Concept: "Suministros", Amount: num("10.50")},
		{Account: " 410001 ", Concept: "Suministros ", Amount: models.TextCell("1.000,25")},
		{Account: "400001", Concept: "Alquiler", Amount: num("300")},
		{Account: "410001", Concept: "Alquiler", Amount: num("5")},
		{Account: "", Concept: "", Amount: num("999")},
	}

	result, err := rs.Breakdown(context.Background(), rows)
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}

	want := []BreakdownEntry{
		{Account: "400001", Concept: "Alquiler", Amount: dec("300"), Rows: 1},
		{Account: "410001", Concept: "Alquiler", Amount: dec("5"), Rows: 1},
		{Account: "410001", Concept: "Suministros", Amount: dec("1010.75"), Rows: 2},
	}
	if len(result.Entries) != len(want) {
		t.Fatalf("Expected %d entries, got %+v", len(want), result.Entries)
	}
	for i, w := range want {
		got := result.Entries[i]
		if got.Account != w.Account || got.Concept != w.Concept || !got.Amount.Equal(w.Amount) || got.Rows != w.Rows {
			t.Errorf("Entries[%d] = %+v, want %+v", i, got, w)
		}
	}
	if !result.Total.Equal(dec("1315.75")) {
		t.Errorf("Expected total 1315.75, got %s", result.Total)
	}
	if result.RowsRead != 5 || result.RowsSkipped != 1 {
		t.Errorf("Expected 5 read and 1 skipped, got %d and %d", result.RowsRead, result.RowsSkipped)
	}
	if result.RunID == "" {
		t.Error("Expected a run id")
	}
}

func TestBuildBreakdownEmpty(t *testing.T) {
	result := BuildBreakdown(nil)
	if len(result.Entries) != 0 || !result.Total.IsZero() {
		t.Errorf("Expected empty breakdown, got %+v", result)
	}
}
