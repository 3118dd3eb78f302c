// Package fixtures generates reconciliation workbooks with a known outcome.
// Each scenario writes a CUADRE_<company>_<yymmdd>.xlsx workbook holding a
// MAYORES ledger and a Sheet1 tracker, optional empty PDF files named after
// tracker invoices, and the counts a correct run must report.
package fixtures

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Scenario describes how many invoices of each outcome to generate
type Scenario struct {
	Company string
	Year    int
	Month   int

	Matched            int
	Mismatched         int
	MissingFromLedger  int
	MissingFromTracker int
	// SplitEvery posts every n-th matched invoice as two ledger rows. Zero disables splitting.
	SplitEvery int
	// Noise adds rows every filter must drop: other company, excluded
	// account, previous month and a pending tracker phase.
	Noise bool
	// WithPdfs writes one empty PDF per matched invoice into a pdfs directory.
	WithPdfs bool

	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	Seed      int64
}

// DefaultScenario returns a small scenario touching every outcome
func DefaultScenario() *Scenario {
	return &Scenario{
		Company:            "TRAVIA",
		Year:               2025,
		Month:              11,
		Matched:            20,
		Mismatched:         4,
		MissingFromLedger:  3,
		MissingFromTracker: 3,
		SplitEvery:         5,
		Noise:              true,
		WithPdfs:           true,
		MinAmount:          decimal.NewFromInt(10),
		MaxAmount:          decimal.NewFromInt(5000),
		Seed:               42,
	}
}

// Validate checks the scenario bounds
func (s *Scenario) Validate() error {
	if s.Company == "" {
		return fmt.Errorf("company is required")
	}
	if s.Year < 2000 || s.Year > 2099 {
		return fmt.Errorf("year must be between 2000 and 2099, got %d", s.Year)
	}
	if s.Month < 1 || s.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", s.Month)
	}
	if s.Matched < 0 || s.Mismatched < 0 || s.MissingFromLedger < 0 || s.MissingFromTracker < 0 || s.SplitEvery < 0 {
		return fmt.Errorf("counts cannot be negative")
	}
	if !s.MinAmount.IsPositive() || s.MaxAmount.LessThan(s.MinAmount) {
		return fmt.Errorf("amount range %s..%s is invalid", s.MinAmount, s.MaxAmount)
	}
	return nil
}

// FileName is the workbook name; the company and period are read back from it
func (s *Scenario) FileName() string {
	return fmt.Sprintf("CUADRE_%s_%02d%02d28.xlsx", s.Company, s.Year%100, s.Month)
}

// Expectation is what a correct reconciliation of the generated workbook reports
type Expectation struct {
	Workbook           string          `yaml:"workbook"`
	PdfDir             string          `yaml:"pdf_dir,omitempty"`
	Company            string          `yaml:"company"`
	Period             string          `yaml:"period"`
	Matched            int             `yaml:"matched"`
	Mismatches         int             `yaml:"mismatches"`
	MissingFromLedger  int             `yaml:"missing_from_ledger"`
	MissingFromTracker int             `yaml:"missing_from_tracker"`
	TrackerTotal       decimal.Decimal `yaml:"tracker_total"`
	LedgerTotal        decimal.Decimal `yaml:"ledger_total"`
	NetDifference      decimal.Decimal `yaml:"net_difference"`
	Pdfs               int             `yaml:"pdfs"`
	Seed               int64           `yaml:"seed"`
}

var (
	ledgerHeader  = []interface{}{"Cuenta", "Fecha", "Documento", "Debe", "Haber", "Concepto", "Sociedad"}
	trackerHeader = []interface{}{"S/Fra. Número", "Importe", "Fecha Fra.", "Fase actual", "Sociedad", "Nombre proveedor", "Concepto"}

	providers = []string{"SUMINISTROS NORTE SL", "TRANSPORTES GARCIA SA", "LIMPIEZAS DEL SUR SL", "ENERGIA IBERICA SA"}
	accounts  = []string{"410001", "410002", "400000"}
)

type generator struct {
	s    *Scenario
	rng  *rand.Rand
	next int

	ledger  [][]interface{}
	tracker [][]interface{}
	pdfs    []string
	exp     *Expectation
}

// Generate writes the scenario into dir and returns the expected outcome.
// expected.yaml is written next to the workbook.
func Generate(dir string, s *Scenario) (*Expectation, error) {
	if s == nil {
		s = DefaultScenario()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	g := &generator{
		s:       s,
		rng:     rand.New(rand.NewSource(s.Seed)),
		next:    30000000 + int(s.Seed%1000)*1000,
		ledger:  [][]interface{}{ledgerHeader},
		tracker: [][]interface{}{trackerHeader},
		exp: &Expectation{
			Workbook:           filepath.Join(dir, s.FileName()),
			Company:            s.Company,
			Period:             fmt.Sprintf("%04d-%02d", s.Year, s.Month),
			Matched:            s.Matched,
			Mismatches:         s.Mismatched,
			MissingFromLedger:  s.MissingFromLedger,
			MissingFromTracker: s.MissingFromTracker,
			Seed:               s.Seed,
		},
	}
	g.build()

	if err := g.writeWorkbook(); err != nil {
		return nil, err
	}
	if s.WithPdfs {
		if err := g.writePdfs(filepath.Join(dir, "pdfs")); err != nil {
			return nil, err
		}
	}

	g.exp.NetDifference = g.exp.TrackerTotal.Sub(g.exp.LedgerTotal)
	if err := writeExpectation(filepath.Join(dir, "expected.yaml"), g.exp); err != nil {
		return nil, err
	}
	return g.exp, nil
}

func (g *generator) build() {
	s := g.s

	for i := 0; i < s.Matched; i++ {
		invoice, amount := g.invoice(), g.amount()
		g.addTracker(invoice, amount, "VISADO PM", s.Company)
		if s.SplitEvery > 0 && (i+1)%s.SplitEvery == 0 {
			first := amount.Div(decimal.NewFromInt(2)).Round(2)
			g.addLedger(accounts[0], g.date(), invoice, first, s.Company)
			g.addLedger(accounts[0], g.date(), invoice, amount.Sub(first), s.Company)
		} else {
			g.addLedger(g.account(), g.date(), invoice, amount, s.Company)
		}
		g.pdfs = append(g.pdfs, invoice+".pdf")
	}

	for i := 0; i < s.Mismatched; i++ {
		invoice, amount := g.invoice(), g.amount()
		delta := decimal.New(int64(1+g.rng.Intn(500)), -2)
		if i%2 == 1 {
			delta = delta.Neg()
		}
		g.addTracker(invoice, amount, "CONTABILIZAR FACTURA", s.Company)
		g.addLedger(g.account(), g.date(), invoice, amount.Add(delta), s.Company)
	}

	for i := 0; i < s.MissingFromLedger; i++ {
		g.addTracker(g.invoice(), g.amount(), "VISADO PM", s.Company)
	}

	for i := 0; i < s.MissingFromTracker; i++ {
		g.addLedger(g.account(), g.date(), g.invoice(), g.amount(), s.Company)
	}

	if s.Noise {
		prev := time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -3)
		g.noiseLedger("410001", g.date(), "OTRA")
		g.noiseLedger("410900", g.date(), s.Company)
		g.noiseLedger("410001", prev, s.Company)
		g.noiseTracker("PENDIENTE", s.Company)
		g.noiseTracker("VISADO PM", "OTRA")
	}
}

func (g *generator) invoice() string {
	g.next += 1 + g.rng.Intn(97)
	return fmt.Sprintf("%08d", g.next)
}

func (g *generator) amount() decimal.Decimal {
	span := g.s.MaxAmount.Sub(g.s.MinAmount)
	return g.s.MinAmount.Add(span.Mul(decimal.NewFromFloat(g.rng.Float64()))).Round(2)
}

func (g *generator) date() time.Time {
	last := time.Date(g.s.Year, time.Month(g.s.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return time.Date(g.s.Year, time.Month(g.s.Month), 1+g.rng.Intn(last), 0, 0, 0, 0, time.UTC)
}

func (g *generator) account() string {
	return accounts[g.rng.Intn(len(accounts))]
}

func (g *generator) addLedger(account string, date time.Time, invoice string, amount decimal.Decimal, company string) {
	g.ledger = append(g.ledger, []interface{}{account, date, invoice, 0, amount.InexactFloat64(), "Factura proveedor", company})
	g.exp.LedgerTotal = g.exp.LedgerTotal.Add(amount)
}

func (g *generator) addTracker(invoice string, amount decimal.Decimal, phase, company string) {
	provider := providers[g.rng.Intn(len(providers))]
	g.tracker = append(g.tracker, []interface{}{invoice, amount.InexactFloat64(), g.date(), phase, company, provider, "Servicios " + g.exp.Period})
	g.exp.TrackerTotal = g.exp.TrackerTotal.Add(amount)
}

func (g *generator) noiseLedger(account string, date time.Time, company string) {
	g.ledger = append(g.ledger, []interface{}{account, date, g.invoice(), 0, g.amount().InexactFloat64(), "Factura proveedor", company})
}

func (g *generator) noiseTracker(phase, company string) {
	g.tracker = append(g.tracker, []interface{}{g.invoice(), g.amount().InexactFloat64(), g.date(), phase, company, providers[0], "Servicios"})
}

func (g *generator) writeWorkbook() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "MAYORES"); err != nil {
		return fmt.Errorf("failed to name ledger sheet: %w", err)
	}
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to add tracker sheet: %w", err)
	}
	if err := writeRows(f, "MAYORES", g.ledger); err != nil {
		return err
	}
	if err := writeRows(f, "Sheet1", g.tracker); err != nil {
		return err
	}

	if err := f.SaveAs(g.exp.Workbook); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func (g *generator) writePdfs(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create pdf directory: %w", err)
	}
	for _, name := range g.pdfs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4\n%%EOF\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	g.exp.PdfDir = dir
	g.exp.Pdfs = len(g.pdfs)
	return nil
}

func writeExpectation(path string, exp *Expectation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("failed to write expectation: %w", err)
	}
	return enc.Close()
}

// ReadExpectation loads an expected.yaml written by Generate
func ReadExpectation(path string) (*Expectation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var exp Expectation
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("invalid expectation file %s: %w", path, err)
	}
	return &exp, nil
}
