// Package reporter renders reconciliation, filename matching and breakdown
// results for people and for other programs.
//
// Supported output formats:
//   - Console: human-readable sections for terminal display
//   - JSON and YAML: structured data for programmatic consumption
//   - CSV: one flat table per result, for spreadsheet applications
//   - XLSX: an unstyled workbook with one worksheet per result set
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{
//		Format:       reporter.FormatXLSX,
//		CSVDelimiter: ',',
//	})
//	err = generator.GenerateReport(result, file)
package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/reconciler"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatCSV     OutputFormat = "csv"
	FormatXLSX    OutputFormat = "xlsx"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatYAML, FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// IsBinary reports whether the format cannot be shown on a terminal
func (f OutputFormat) IsBinary() bool {
	return f == FormatXLSX
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeMatched lists reconciled invoices and not only the differences.
	IncludeMatched bool `json:"include_matched"`
	// IncludeStats adds the per-source row statistics.
	IncludeStats bool `json:"include_stats"`

	// MaxListItems caps each console list; 0 prints everything.
	MaxListItems int `json:"max_list_items"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		IncludeMatched: false,
		IncludeStats:   true,
		MaxListItems:   50,
		CSVDelimiter:   ',',
		CSVHeaders:     true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxListItems < 0 {
		return fmt.Errorf("max list items cannot be negative, got %d", c.MaxListItems)
	}

	if c.Format == FormatCSV && (c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n') {
		return fmt.Errorf("invalid CSV delimiter %q", c.CSVDelimiter)
	}

	return nil
}

// ReportGenerator renders results in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport writes a reconciliation report to writer
func (rg *ReportGenerator) GenerateReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("reconciliation result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.reconciliationConsole(result, writer)
	case FormatJSON:
		return writeJSON(rg.reconciliationOutput(result), writer)
	case FormatYAML:
		return writeYAML(rg.reconciliationOutput(result), writer)
	case FormatCSV:
		return rg.writeCSV(rg.reconciliationTable(result), writer)
	case FormatXLSX:
		return writeXLSX(rg.reconciliationSheets(result), writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GenerateMatchReport writes a filename matching report to writer
func (rg *ReportGenerator) GenerateMatchReport(result *matcher.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("matching result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.matchConsole(result, writer)
	case FormatJSON:
		return writeJSON(result, writer)
	case FormatYAML:
		return writeYAML(result, writer)
	case FormatCSV:
		return rg.writeCSV(matchTable(result), writer)
	case FormatXLSX:
		return writeXLSX(matchSheets(result), writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GenerateBreakdownReport writes an account and concept breakdown to writer
func (rg *ReportGenerator) GenerateBreakdownReport(result *reconciler.BreakdownResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("breakdown result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.breakdownConsole(result, writer)
	case FormatJSON:
		return writeJSON(result, writer)
	case FormatYAML:
		return writeYAML(result, writer)
	case FormatCSV:
		return rg.writeCSV(breakdownTable(result), writer)
	case FormatXLSX:
		return writeXLSX([]sheet{breakdownTable(result)}, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// reconciliationOutput drops the sections the configuration leaves out
func (rg *ReportGenerator) reconciliationOutput(result *reconciler.ReconciliationResult) map[string]interface{} {
	output := map[string]interface{}{
		"run_id":       result.RunID,
		"source_name":  result.SourceName,
		"filter":       result.Filter,
		"summary":      result.Summary,
		"processed_at": result.ProcessedAt,
	}

	if c := result.Comparison; c != nil {
		output["missing_from_ledger"] = c.MissingFromLedger
		output["mismatches"] = c.Mismatches
		output["missing_from_tracker"] = c.MissingFromTracker
		if rg.config.IncludeMatched {
			output["matched"] = c.Matched
		}
	}

	if rg.config.IncludeStats {
		output["ledger_stats"] = result.LedgerStats
		output["tracker_stats"] = result.TrackerStats
	}

	return output
}

func writeJSON(v interface{}, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(v interface{}, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
