package reconciler

import (
	"testing"
	"time"

	"invoice-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func num(s string) models.Cell {
	return models.NumberCell(decimal.RequireFromString(s))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ledgerRow(account, document, concept, credit string) models.LedgerRow {
	return models.LedgerRow{
		Account:  account,
		Date:     models.DateCell(time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)),
		Document: document,
		Concept:  concept,
		Credit:   num(credit),
	}
}

func trackerRow(invoice, amount, phase string) models.TrackerRow {
	return models.TrackerRow{
		InvoiceNumber: invoice,
		Amount:        num(amount),
		Phase:         phase,
	}
}

func TestAggregateAdd(t *testing.T) {
	agg := NewAggregate()

	if agg.Add("", "empty", dec("10")) {
		t.Error("Expected empty key to be rejected")
	}
	agg.Add("123456", "REF123456", dec("10.10"))
	agg.Add("123456", "REF 123456", dec("5.05"))
	agg.Add("999", "999", dec("1"))

	if agg.Len() != 2 {
		t.Fatalf("Expected 2 keys, got %d", agg.Len())
	}
	e, ok := agg.Get("123456")
	if !ok {
		t.Fatal("Expected key 123456")
	}
	if e.Label != "REF123456" {
		t.Errorf("Expected first label to be kept, got %s", e.Label)
	}
	if !e.Amount.Equal(dec("15.15")) || e.Rows != 2 {
		t.Errorf("Expected 15.15 over 2 rows, got %s over %d", e.Amount, e.Rows)
	}
	if keys := agg.Keys(); keys[0] != "123456" || keys[1] != "999" {
		t.Errorf("Expected sorted keys, got %v", keys)
	}
	if !agg.Total().Equal(dec("16.15")) {
		t.Errorf("Expected total 16.15, got %s", agg.Total())
	}
}

func TestLedgerFilters(t *testing.T) {
	nov := Filter{Period: Period{Year: 2025, Month: 11}}

	tests := []struct {
		name       string
		row        models.LedgerRow
		hasCompany bool
		filter     Filter
		wantKey    string
		wantSkip   SkipReason
	}{
		{
			name:    "accepted 41 account",
			row:     ledgerRow("410001", "REF123456", "", "100.00"),
			filter:  nov,
			wantKey: "123456",
		},
		{
			name:    "accepted 40 account",
			row:     ledgerRow("400123", "12345678", "", "10"),
			filter:  nov,
			wantKey: "12345678",
		},
		{
			name:     "excluded sub-account",
			row:      ledgerRow("410900", "12345678", "", "10"),
			filter:   nov,
			wantSkip: SkipAccount,
		},
		{
			name:     "other account",
			row:      ledgerRow("572000", "12345678", "", "10"),
			filter:   nov,
			wantSkip: SkipAccount,
		},
		{
			name:     "zero credit",
			row:      ledgerRow("410001", "12345678", "", "0.00000001"),
			filter:   nov,
			wantSkip: SkipZeroCredit,
		},
		{
			name:     "outside period",
			row:      ledgerRow("410001", "12345678", "", "10"),
			filter:   Filter{Period: Period{Year: 2025, Month: 10}},
			wantSkip: SkipPeriod,
		},
		{
			name: "unparseable date fails closed",
			row: func() models.LedgerRow {
				r := ledgerRow("410001", "12345678", "", "10")
				r.Date = models.TextCell("not a date")
				return r
			}(),
			filter:   nov,
			wantSkip: SkipPeriod,
		},
		{
			name: "other company",
			row: func() models.LedgerRow {
				r := ledgerRow("410001", "12345678", "", "10")
				r.Company = "Elia Servicios"
				return r
			}(),
			hasCompany: true,
			filter:     Filter{Company: "TRAVIA", Period: nov.Period},
			wantSkip:   SkipCompany,
		},
		{
			name: "company ignored without column",
			row: func() models.LedgerRow {
				r := ledgerRow("410001", "12345678", "", "10")
				r.Company = "Elia Servicios"
				return r
			}(),
			filter:  Filter{Company: "TRAVIA", Period: nov.Period},
			wantKey: "12345678",
		},
		{
			name:     "no usable token",
			row:      ledgerRow("410001", "Pago", "1234", "10"),
			filter:   nov,
			wantSkip: SkipNoToken,
		},
		{
			name: "fallback to other columns",
			row: func() models.LedgerRow {
				r := ledgerRow("410001", "Pago", "proveedor", "10")
				r.Extra = []string{"x", "FRA 87654321"}
				return r
			}(),
			filter:  nov,
			wantKey: "87654321",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ag := NewAggregator(DefaultConfig())
			sheet := models.LedgerSheet{Rows: []models.LedgerRow{tt.row}, HasCompany: tt.hasCompany}

			agg, stats := ag.Ledger(sheet, tt.filter)

			if tt.wantSkip != "" {
				if agg.Len() != 0 {
					t.Errorf("Expected row to be skipped, got keys %v", agg.Keys())
				}
				if stats.Skipped[tt.wantSkip] != 1 {
					t.Errorf("Expected skip reason %s, got %v", tt.wantSkip, stats.Skipped)
				}
				return
			}
			if _, ok := agg.Get(tt.wantKey); !ok {
				t.Errorf("Expected key %s, got %v", tt.wantKey, agg.Keys())
			}
			if stats.RowsKept != 1 {
				t.Errorf("Expected 1 kept row, got %d", stats.RowsKept)
			}
		})
	}
}

func TestTrackerFilters(t *testing.T) {
	withCompany := func(r models.TrackerRow, company string) models.TrackerRow {
		r.Company = company
		return r
	}

	sheet := models.TrackerSheet{
		HasCompany: true,
		Rows: []models.TrackerRow{
			withCompany(trackerRow("REF 123456", "100.00", "VISADO PM"), "Travia Gestión S.L."),
			withCompany(trackerRow("9988776655", "50.00", "contabilizar factura"), "TRAVIA"),
			withCompany(trackerRow("1111111111", "10.00", "PENDIENTE"), "TRAVIA"),
			withCompany(trackerRow("2222222222", "10.00", "VISADO PM"), "ELIA"),
			withCompany(trackerRow("sin numero", "10.00", "VISADO PM"), "TRAVIA"),
		},
	}

	ag := NewAggregator(DefaultConfig())
	agg, stats := ag.Tracker(sheet, Filter{Company: "TRAVIA"})

	if agg.Len() != 2 {
		t.Fatalf("Expected 2 keys, got %v", agg.Keys())
	}
	if e, _ := agg.Get("123456"); !e.Amount.Equal(dec("100")) || e.Label != "REF123456" {
		t.Errorf("Unexpected entry for 123456: %+v", e)
	}
	if _, ok := agg.Get("9988776655"); !ok {
		t.Error("Expected key 9988776655")
	}
	if stats.Skipped[SkipPhase] != 1 || stats.Skipped[SkipCompany] != 1 || stats.Skipped[SkipNoToken] != 1 {
		t.Errorf("Unexpected skip counts %v", stats.Skipped)
	}
	if stats.RowsRead != 5 || stats.RowsKept != 2 {
		t.Errorf("Expected 5 read and 2 kept, got %d and %d", stats.RowsRead, stats.RowsKept)
	}
}

func TestAggregationIsOrderIndependent(t *testing.T) {
	rows := []models.TrackerRow{
		trackerRow("12345678", "0.10", "VISADO PM"),
		trackerRow("12345678", "0.20", "VISADO PM"),
		trackerRow("87654321", "1000.005", "VISADO PM"),
		trackerRow("12345678", "33.333", "VISADO PM"),
		trackerRow("87654321", "-0.005", "VISADO PM"),
	}
	permutations := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}

	ag := NewAggregator(DefaultConfig())
	var reference *Aggregate
	for _, perm := range permutations {
		sheet := models.TrackerSheet{}
		for _, i := range perm {
			sheet.Rows = append(sheet.Rows, rows[i])
		}
		agg, _ := ag.Tracker(sheet, Filter{})

		if reference == nil {
			reference = agg
			continue
		}
		for _, key := range reference.Keys() {
			want, _ := reference.Get(key)
			got, ok := agg.Get(key)
			if !ok || !got.Amount.Equal(want.Amount) {
				t.Errorf("Permutation %v: key %s = %s, want %s", perm, key, got.Amount, want.Amount)
			}
		}
	}

	if e, _ := reference.Get("12345678"); !e.Amount.Equal(dec("33.633")) {
		t.Errorf("Expected exact sum 33.633, got %s", e.Amount)
	}
	if e, _ := reference.Get("87654321"); !e.Amount.Equal(dec("1000")) {
		t.Errorf("Expected exact sum 1000, got %s", e.Amount)
	}
}
