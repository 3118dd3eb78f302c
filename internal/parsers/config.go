package parsers

import (
	"fmt"
	"strings"
)

// Column headers as exported by the accounting and invoice-tracking systems
const (
	HeaderAccount  = "Cuenta"
	HeaderDate     = "Fecha"
	HeaderDocument = "Documento"
	HeaderCredit   = "Haber"
	HeaderDebit    = "Debe"
	HeaderConcept  = "Concepto"
	HeaderCompany  = "Sociedad"

	HeaderInvoiceNumber = "S/Fra. Número"
	HeaderAmount        = "Importe"
	HeaderInvoiceDate   = "Fecha Fra."
	HeaderPhase         = "Fase actual"
	HeaderProvider      = "Nombre proveedor"
)

// LoaderConfig holds the worksheet names and the header scan depth
type LoaderConfig struct {
	// HeaderScanRows is how many leading rows are searched for the header row.
	HeaderScanRows int `mapstructure:"header_scan_rows" json:"header_scan_rows"`
	// LedgerSheet is the general-ledger worksheet name.
	LedgerSheet string `mapstructure:"ledger_sheet" json:"ledger_sheet"`
	// TrackerSheets are tried in order for the invoice-tracking worksheet.
	TrackerSheets []string `mapstructure:"tracker_sheets" json:"tracker_sheets"`
}

// DefaultLoaderConfig returns the layout of the production exports
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		HeaderScanRows: 60,
		LedgerSheet:    "MAYORES",
		TrackerSheets:  []string{"Sheet1", "Hoja1"},
	}
}

// Validate checks if the loader configuration is valid
func (c *LoaderConfig) Validate() error {
	if c.HeaderScanRows <= 0 {
		return fmt.Errorf("header scan rows must be positive, got %d", c.HeaderScanRows)
	}

	if strings.TrimSpace(c.LedgerSheet) == "" {
		return fmt.Errorf("ledger sheet name cannot be empty")
	}

	if len(c.TrackerSheets) == 0 {
		return fmt.Errorf("at least one tracker sheet name is required")
	}
	for _, name := range c.TrackerSheets {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("tracker sheet names cannot be blank")
		}
	}

	return nil
}

// ledgerRequired are the headers that locate the ledger header row
func ledgerRequired() []string {
	return []string{HeaderAccount, HeaderDate, HeaderDocument, HeaderCredit, HeaderConcept}
}

// trackerRequired are the headers that locate the tracker header row
func trackerRequired() []string {
	return []string{HeaderInvoiceNumber, HeaderAmount, HeaderInvoiceDate, HeaderPhase, HeaderCompany}
}

// detailAnchors locate the detail header row; row 1 is assumed otherwise
func detailAnchors() []string {
	return []string{HeaderInvoiceNumber, HeaderAmount}
}

// breakdownRequired are the headers that locate the breakdown header row
func breakdownRequired() []string {
	return []string{HeaderAccount, HeaderConcept}
}
