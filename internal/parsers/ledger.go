package parsers

import (
	"strings"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// LoadLedger reads the general-ledger worksheet. The company column is
// optional; every column other than account, date, debit, credit, document
// and concept is kept as extra text for the fallback token scan.
func (wb *Workbook) LoadLedger() (models.LedgerSheet, *LoadStats, error) {
	sheet := wb.findSheet(wb.config.LedgerSheet)
	if sheet == "" {
		return models.LedgerSheet{}, nil, apperrors.WorkbookError(apperrors.CodeMissingSheet, wb.config.LedgerSheet, "", nil)
	}

	rows, err := wb.readRows(sheet)
	if err != nil {
		return models.LedgerSheet{}, nil, err
	}
	t, err := wb.newTable(sheet, rows, ledgerRequired())
	if err != nil {
		return models.LedgerSheet{}, nil, err
	}

	var (
		cAccount  = t.col(HeaderAccount)
		cDate     = t.col(HeaderDate)
		cDocument = t.col(HeaderDocument)
		cCredit   = t.col(HeaderCredit)
		cConcept  = t.col(HeaderConcept)
		cDebit    = t.col(HeaderDebit)
		cCompany  = t.col(HeaderCompany)
	)
	mapped := map[int]bool{
		cAccount: true, cDate: true, cDocument: true,
		cCredit: true, cConcept: true, cDebit: true,
	}

	out := models.LedgerSheet{HasCompany: cCompany >= 0}
	stats := t.stats()

	t.each(stats, func(line int, cells []string) {
		row := models.LedgerRow{
			Line:     line,
			Account:  strings.TrimSpace(text(cells, cAccount)),
			Date:     dateCell(cells, cDate),
			Document: text(cells, cDocument),
			Concept:  text(cells, cConcept),
			Debit:    numberCell(cells, cDebit),
			Credit:   numberCell(cells, cCredit),
			Company:  text(cells, cCompany),
		}
		for i, v := range cells {
			if !mapped[i] && strings.TrimSpace(v) != "" {
				row.Extra = append(row.Extra, v)
			}
		}
		out.Rows = append(out.Rows, row)
	})

	wb.logger.WithFields(logger.Fields{
		"sheet":       sheet,
		"header_row":  stats.HeaderRow,
		"has_company": out.HasCompany,
	}).Debugf("Loaded %d ledger rows", stats.RowsRead)

	return out, stats, nil
}
