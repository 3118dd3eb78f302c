package cmd

import (
	"context"
	"fmt"

	"invoice-reconciliation-service/cmd/reconciler/config"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the match-pdfs command
var (
	matchWorkbook   string
	pdfDir          string
	pdfFiles        []string
	amountTolerance float64
	matchFormat     string
	matchOutput     string
)

var matchCmd = &cobra.Command{
	Use:   "match-pdfs",
	Short: "Tie invoice PDFs to tracker rows by file name",
	Long: `Match-pdfs reads the invoice tracker of a workbook and decides, from the
file name alone, which tracker invoice every PDF documents. Files are tried
against increasingly weak evidence: the exact invoice number, then provider
plus invoice fragment, then concept or invoice date on top of that, and
finally an amount written in the name. Unmatched files are reported with the
best partial evidence found, and tracker invoices no file claimed are listed.

Examples:
  reconciler match-pdfs --workbook tracker.xlsx --pdf-dir ./facturas
  reconciler match-pdfs --workbook tracker.xlsx --files "MTM 2025 FRA-00123.pdf,4500012345.pdf"
  reconciler match-pdfs --workbook tracker.xlsx --pdf-dir ./facturas -f csv -o matches.csv`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&matchWorkbook, "workbook", "w", "", "workbook with the tracker worksheet (required)")
	matchCmd.Flags().StringVar(&pdfDir, "pdf-dir", "", "directory whose PDF files are matched")
	matchCmd.Flags().StringSliceVar(&pdfFiles, "files", []string{}, "comma-separated file names to match")
	matchCmd.Flags().Float64Var(&amountTolerance, "amount-tolerance", 0.01, "largest difference between a file name amount and a tracker amount")

	matchCmd.Flags().StringVarP(&matchFormat, "output-format", "f", "console", "output format: "+validFormats)
	matchCmd.Flags().StringVarP(&matchOutput, "output-file", "o", "", "output file path (default: stdout)")

	matchCmd.MarkFlagRequired("workbook")

	viper.BindPFlag(config.KeyAmountTolerance, matchCmd.Flags().Lookup("amount-tolerance"))
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(matchWorkbook, "workbook"); err != nil {
		return err
	}

	var errs []error
	if pdfDir == "" && len(pdfFiles) == 0 {
		errs = append(errs, fmt.Errorf("either --pdf-dir or --files is required"))
	}
	if pdfDir != "" {
		if err := validateDirExists(pdfDir, "PDF directory"); err != nil {
			return err
		}
	}
	if amountTolerance < 0 {
		errs = append(errs, fmt.Errorf("amount tolerance cannot be negative"))
	}

	errs = append(errs, validateOutputFlags(matchFormat, matchOutput)...)

	return flagErrors(errs)
}

// collectFiles lists the directory, then appends the explicit names
func collectFiles(dir string, names []string) ([]models.PdfFile, error) {
	var files []models.PdfFile
	if dir != "" {
		listed, err := parsers.ListPdfFiles(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, listed...)
	}
	return append(files, models.PdfFilesFromNames(names)...), nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.WithComponent("cli").WithField("workbook", matchWorkbook)

	files, err := collectFiles(pdfDir, pdfFiles)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.ValidationError(errors.CodeMissingField, "files", pdfDir, nil).
			WithSuggestion("the directory holds no PDF files; point --pdf-dir elsewhere or use --files")
	}

	service, err := newService()
	if err != nil {
		return err
	}

	wb, err := openWorkbook(matchWorkbook)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet, stats, err := wb.LoadTrackerDetail()
	if err != nil {
		return err
	}
	if !sheet.HasProvider {
		log.Warn("Tracker has no provider column, only exact invoice numbers can match")
	}
	log.WithField("tracker_rows", stats.RowsRead).Debugf("Matching %d files", len(files))

	result, err := service.MatchFiles(ctx, files, sheet)
	if err != nil {
		return err
	}

	if err := writeReport(matchFormat, matchOutput, result); err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"run_id":    result.RunID,
		"matched":   result.Summary.Matched,
		"unmatched": result.Summary.Unmatched,
	}).Info("File matching completed")

	return nil
}
