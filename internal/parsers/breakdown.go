package parsers

import (
	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// LoadBreakdown reads account, concept and amount from the ledger worksheet,
// or from the first worksheet with data when there is no ledger worksheet.
// The amount comes from the credit column, else the amount column, else the
// debit column.
func (wb *Workbook) LoadBreakdown() ([]models.BreakdownRow, *LoadStats, error) {
	var (
		rows [][]string
		err  error
	)
	sheet := wb.findSheet(wb.config.LedgerSheet)
	if sheet != "" {
		rows, err = wb.readRows(sheet)
	} else {
		sheet, rows, err = wb.firstSheetWithData()
	}
	if err != nil {
		return nil, nil, err
	}

	t, err := wb.newTable(sheet, rows, breakdownRequired())
	if err != nil {
		return nil, nil, err
	}

	cAmount := -1
	for _, h := range []string{HeaderCredit, HeaderAmount, HeaderDebit} {
		if cAmount = t.col(h); cAmount >= 0 {
			break
		}
	}
	if cAmount < 0 {
		return nil, nil, apperrors.WorkbookError(apperrors.CodeMissingColumn, sheet, HeaderCredit, nil).
			WithSuggestion("the worksheet needs a 'Haber', 'Importe' or 'Debe' column")
	}

	cAccount := t.col(HeaderAccount)
	cConcept := t.col(HeaderConcept)

	var out []models.BreakdownRow
	stats := t.stats()
	t.each(stats, func(_ int, cells []string) {
		out = append(out, models.BreakdownRow{
			Account: text(cells, cAccount),
			Concept: text(cells, cConcept),
			Amount:  numberCell(cells, cAmount),
		})
	})

	wb.logger.WithField("sheet", sheet).Debugf("Loaded %d breakdown rows", stats.RowsRead)
	return out, stats, nil
}
