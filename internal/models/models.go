// Package models defines the spreadsheet-facing data types shared by the
// parsers, the reconciliation core and the reporters.
package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind is the type a spreadsheet cell carried when it was read
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// String returns the string representation of CellKind
func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "unknown"
	}
}

// Cell is a typed worksheet value. The core treats cells as opaque until
// they reach SafeNumber or ParseCellDate.
type Cell struct {
	Kind   CellKind        `json:"kind"`
	Text   string          `json:"text,omitempty"`
	Number decimal.Decimal `json:"number,omitempty"`
	Time   time.Time       `json:"time,omitempty"`
}

// TextCell builds a text cell; blank text yields an empty cell.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Number: d}
}

// DateCell builds a date cell
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// IsEmpty reports whether the cell carries no value
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell the way a user would read it in the sheet
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Number.String()
	case CellDate:
		return c.Time.Format("02/01/2006")
	default:
		return ""
	}
}

// LedgerRow is one line of the general-ledger ("MAYORES") sheet
type LedgerRow struct {
	Line     int    `json:"line"`
	Account  string `json:"account"`
	Date     Cell   `json:"date"`
	Document string `json:"document"`
	Concept  string `json:"concept"`
	Debit    Cell   `json:"debit"`
	Credit   Cell   `json:"credit"`
	Company  string `json:"company,omitempty"`
	// Extra holds the text of every column not mapped above, in sheet order.
	// It feeds the fallback token scan.
	Extra []string `json:"extra,omitempty"`
}

// LedgerSheet is the ledger worksheet after header resolution
type LedgerSheet struct {
	Rows []LedgerRow `json:"rows"`
	// HasCompany is false when the optional company column is absent, in
	// which case the company filter is not applied.
	HasCompany bool `json:"has_company"`
}

// TrackerRow is one line of the invoice-tracking sheet ("Sheet1"/"Hoja1")
type TrackerRow struct {
	Line          int    `json:"line"`
	InvoiceNumber string `json:"invoice_number"`
	Amount        Cell   `json:"amount"`
	InvoiceDate   Cell   `json:"invoice_date"`
	Phase         string `json:"phase"`
	Company       string `json:"company,omitempty"`
}

// TrackerSheet is the tracker worksheet after header resolution
type TrackerSheet struct {
	Rows       []TrackerRow `json:"rows"`
	HasCompany bool         `json:"has_company"`
}

// TrackerDetailRow is a tracker line as used by the filename matcher
type TrackerDetailRow struct {
	Line          int    `json:"line"`
	InvoiceNumber string `json:"invoice_number"`
	Amount        Cell   `json:"amount"`
	Provider      string `json:"provider,omitempty"`
	Concept       string `json:"concept,omitempty"`
	InvoiceDate   Cell   `json:"invoice_date"`
}

// TrackerDetailSheet carries detail rows and which optional columns exist
type TrackerDetailSheet struct {
	Rows        []TrackerDetailRow `json:"rows"`
	HasProvider bool               `json:"has_provider"`
	HasConcept  bool               `json:"has_concept"`
	HasDate     bool               `json:"has_date"`
}

// BreakdownRow is a ledger line reduced to account, concept and amount
type BreakdownRow struct {
	Account string `json:"account"`
	Concept string `json:"concept"`
	Amount  Cell   `json:"amount"`
}

// PdfFile identifies a scanned invoice by name only
type PdfFile struct {
	Name string `json:"name"`
}

// BaseName returns the file name without directory and extension
func (p PdfFile) BaseName() string {
	base := filepath.Base(strings.TrimSpace(p.Name))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks that the file has a usable name
func (p PdfFile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	return nil
}

// PdfFilesFromNames wraps plain names, dropping blanks
func PdfFilesFromNames(names []string) []PdfFile {
	files := make([]PdfFile, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		files = append(files, PdfFile{Name: n})
	}
	return files
}
