// Command fixturegen writes sample reconciliation workbooks with a known
// outcome for manual runs of the reconciler.
package main

import (
	"fmt"
	"os"
	"time"

	"invoice-reconciliation-service/internal/fixtures"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	s := fixtures.DefaultScenario()
	var (
		outputDir string
		minAmount float64
		maxAmount float64
		random    bool
	)

	cmd := &cobra.Command{
		Use:   "fixturegen",
		Short: "Generate a sample CUADRE workbook and matching PDF names",
		Long: `fixturegen writes CUADRE_<company>_<yymmdd>.xlsx with a MAYORES ledger and a
Sheet1 tracker, a pdfs directory with one empty file per matched invoice, and
expected.yaml with the counts a correct run reports.

Examples:
  fixturegen --output-dir generated
  fixturegen --company ELIA --year 2026 --month 2 --matched 500 --pdfs=false`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s.MinAmount = decimal.NewFromFloat(minAmount)
			s.MaxAmount = decimal.NewFromFloat(maxAmount)
			if random {
				s.Seed = time.Now().UnixNano()
			}

			exp, err := fixtures.Generate(outputDir, s)
			if err != nil {
				return err
			}

			logger.WithComponent("fixturegen").WithFields(logger.Fields{
				"workbook": exp.Workbook,
				"pdfs":     exp.Pdfs,
				"seed":     exp.Seed,
			}).Info("Fixture generated")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workbook:             %s\n", exp.Workbook)
			fmt.Fprintf(out, "Matched:              %d\n", exp.Matched)
			fmt.Fprintf(out, "Mismatches:           %d\n", exp.Mismatches)
			fmt.Fprintf(out, "Missing from ledger:  %d\n", exp.MissingFromLedger)
			fmt.Fprintf(out, "Missing from tracker: %d\n", exp.MissingFromTracker)
			fmt.Fprintf(out, "Net difference:       %s\n", exp.NetDifference.StringFixed(2))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outputDir, "output-dir", "d", "generated", "output directory")
	flags.StringVar(&s.Company, "company", s.Company, "company code written to every row and the file name")
	flags.IntVar(&s.Year, "year", s.Year, "period year")
	flags.IntVar(&s.Month, "month", s.Month, "period month")
	flags.IntVar(&s.Matched, "matched", s.Matched, "invoices present in both sources with equal amounts")
	flags.IntVar(&s.Mismatched, "mismatched", s.Mismatched, "invoices present in both sources with different amounts")
	flags.IntVar(&s.MissingFromLedger, "missing-from-ledger", s.MissingFromLedger, "tracker invoices with no ledger row")
	flags.IntVar(&s.MissingFromTracker, "missing-from-tracker", s.MissingFromTracker, "ledger invoices with no tracker row")
	flags.IntVar(&s.SplitEvery, "split-every", s.SplitEvery, "post every n-th matched invoice as two ledger rows (0 disables)")
	flags.Float64Var(&minAmount, "min-amount", s.MinAmount.InexactFloat64(), "minimum invoice amount")
	flags.Float64Var(&maxAmount, "max-amount", s.MaxAmount.InexactFloat64(), "maximum invoice amount")
	flags.Int64Var(&s.Seed, "seed", s.Seed, "random seed")
	flags.BoolVar(&random, "random", false, "use a time based seed instead of --seed")
	flags.BoolVar(&s.Noise, "noise", s.Noise, "add rows every filter must drop")
	flags.BoolVar(&s.WithPdfs, "pdfs", s.WithPdfs, "write one empty PDF per matched invoice")

	return cmd
}
