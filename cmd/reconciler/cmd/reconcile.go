package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"invoice-reconciliation-service/cmd/reconciler/config"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	workbookFile string
	sourceName   string
	year         int
	month        int
	company      string
	outputFormat string
	outputFile   string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the invoice tracker with the general ledger",
	Long: `Reconcile aggregates the ledger worksheet (MAYORES) and the tracker
worksheet (Sheet1 or Hoja1) of a workbook by normalized invoice number, then
reports invoices missing from the ledger, amount mismatches and ledger
invoices missing from the tracker.

The company and the period are read from the workbook file name unless given
explicitly: the first known company code in the name, and the first six digit
run read as YYMMDD.

Examples:
  # Company and period taken from the file name
  reconciler reconcile --workbook CUADRE_TRAVIA_251105.xlsx

  # Explicit filters
  reconciler reconcile --workbook cuadre.xlsx --company ELIA --year 2025 --month 10

  # Workbook report
  reconciler reconcile --workbook CUADRE_TRAVIA_251105.xlsx -f xlsx -o diferencias.xlsx`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVarP(&workbookFile, "workbook", "w", "", "workbook with the ledger and tracker worksheets (required)")
	reconcileCmd.Flags().StringVar(&sourceName, "source-name", "", "file name used for company and period detection (default: the workbook name)")

	reconcileCmd.Flags().IntVar(&year, "year", 0, "period year, used together with --month")
	reconcileCmd.Flags().IntVar(&month, "month", 0, "period month (1-12), used together with --year")
	reconcileCmd.Flags().StringVar(&company, "company", "", "company code filter (default: detected from the file name)")

	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: "+validFormats)
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	reconcileCmd.MarkFlagRequired("workbook")
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	var errs []error

	if err := validateFileExists(workbookFile, "workbook"); err != nil {
		if _, ok := errors.AsReconcilerError(err); ok {
			return err
		}
		errs = append(errs, err)
	}

	if (year == 0) != (month == 0) {
		errs = append(errs, fmt.Errorf("--year and --month must be given together"))
	}
	if month < 0 || month > 12 {
		errs = append(errs, fmt.Errorf("month must be between 1 and 12, got %d", month))
	}
	if year < 0 {
		errs = append(errs, fmt.Errorf("year cannot be negative, got %d", year))
	}

	errs = append(errs, validateOutputFlags(outputFormat, outputFile)...)

	return flagErrors(errs)
}

func newService() (*reconciler.ReconciliationService, error) {
	reconcilerConfig, err := config.CreateReconcilerConfig(viper.GetViper())
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "reconciler", nil, err)
	}
	matchingConfig, err := config.CreateMatchingConfig(viper.GetViper())
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matcher", nil, err)
	}
	return reconciler.NewReconciliationService(reconcilerConfig, matchingConfig)
}

func openWorkbook(path string) (*parsers.Workbook, error) {
	loaderConfig, err := config.CreateLoaderConfig(viper.GetViper())
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "workbook", nil, err)
	}
	return parsers.Open(path, loaderConfig)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.WithComponent("cli").WithField("workbook", workbookFile)

	service, err := newService()
	if err != nil {
		return err
	}

	wb, err := openWorkbook(workbookFile)
	if err != nil {
		return err
	}
	defer wb.Close()

	ledger, ledgerStats, err := wb.LoadLedger()
	if err != nil {
		return err
	}
	tracker, trackerStats, err := wb.LoadTracker()
	if err != nil {
		return err
	}
	log.WithFields(logger.Fields{
		"ledger_rows":  ledgerStats.RowsRead,
		"tracker_rows": trackerStats.RowsRead,
	}).Debug("Workbook loaded")

	name := sourceName
	if name == "" {
		name = filepath.Base(workbookFile)
	}

	result, err := service.Reconcile(ctx, &reconciler.ReconciliationRequest{
		SourceName: name,
		Year:       year,
		Month:      month,
		Company:    company,
		Ledger:     ledger,
		Tracker:    tracker,
	})
	if err != nil {
		return err
	}

	if err := writeReport(outputFormat, outputFile, result); err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"run_id":               result.RunID,
		"missing_from_ledger":  result.Summary.MissingFromLedgerCount,
		"mismatches":           result.Summary.MismatchCount,
		"missing_from_tracker": result.Summary.MissingFromTrackerCount,
		"duration":             result.Duration,
	}).Info("Reconciliation completed")

	return nil
}
