package cmd

import (
	"context"

	"invoice-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
)

// Flags for the breakdown command
var (
	breakdownWorkbook string
	breakdownFormat   string
	breakdownOutput   string
)

var breakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Sum ledger amounts per account and concept",
	Long: `Breakdown reads the ledger worksheet (MAYORES, or the first worksheet with
data) and sums the amount of every account and concept pair. The amount is
taken from the Haber column, else Importe, else Debe.

Examples:
  reconciler breakdown --workbook mayores.xlsx
  reconciler breakdown --workbook mayores.xlsx -f xlsx -o desglose.xlsx`,

	PreRunE: validateBreakdownFlags,
	RunE:    runBreakdown,
}

func init() {
	rootCmd.AddCommand(breakdownCmd)

	breakdownCmd.Flags().StringVarP(&breakdownWorkbook, "workbook", "w", "", "ledger workbook (required)")
	breakdownCmd.Flags().StringVarP(&breakdownFormat, "output-format", "f", "console", "output format: "+validFormats)
	breakdownCmd.Flags().StringVarP(&breakdownOutput, "output-file", "o", "", "output file path (default: stdout)")

	breakdownCmd.MarkFlagRequired("workbook")
}

func validateBreakdownFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(breakdownWorkbook, "workbook"); err != nil {
		return err
	}
	return flagErrors(validateOutputFlags(breakdownFormat, breakdownOutput))
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	service, err := newService()
	if err != nil {
		return err
	}

	wb, err := openWorkbook(breakdownWorkbook)
	if err != nil {
		return err
	}
	defer wb.Close()

	rows, stats, err := wb.LoadBreakdown()
	if err != nil {
		return err
	}

	result, err := service.Breakdown(ctx, rows)
	if err != nil {
		return err
	}

	if err := writeReport(breakdownFormat, breakdownOutput, result); err != nil {
		return err
	}

	logger.WithComponent("cli").WithFields(logger.Fields{
		"run_id": result.RunID,
		"sheet":  stats.Sheet,
		"groups": len(result.Entries),
	}).Info("Breakdown completed")

	return nil
}
