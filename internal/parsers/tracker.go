package parsers

import (
	"strings"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// LoadTracker reads the invoice-tracking worksheet used for reconciliation.
// Every tracker header, company included, is required.
func (wb *Workbook) LoadTracker() (models.TrackerSheet, *LoadStats, error) {
	sheet := wb.findSheet(wb.config.TrackerSheets...)
	if sheet == "" {
		return models.TrackerSheet{}, nil, apperrors.WorkbookError(apperrors.CodeMissingSheet, strings.Join(wb.config.TrackerSheets, "/"), "", nil)
	}

	rows, err := wb.readRows(sheet)
	if err != nil {
		return models.TrackerSheet{}, nil, err
	}
	t, err := wb.newTable(sheet, rows, trackerRequired())
	if err != nil {
		return models.TrackerSheet{}, nil, err
	}

	var (
		cInvoice = t.col(HeaderInvoiceNumber)
		cAmount  = t.col(HeaderAmount)
		cDate    = t.col(HeaderInvoiceDate)
		cPhase   = t.col(HeaderPhase)
		cCompany = t.col(HeaderCompany)
	)

	out := models.TrackerSheet{HasCompany: cCompany >= 0}
	stats := t.stats()

	t.each(stats, func(line int, cells []string) {
		out.Rows = append(out.Rows, models.TrackerRow{
			Line:          line,
			InvoiceNumber: text(cells, cInvoice),
			Amount:        numberCell(cells, cAmount),
			InvoiceDate:   dateCell(cells, cDate),
			Phase:         text(cells, cPhase),
			Company:       text(cells, cCompany),
		})
	})

	wb.logger.WithFields(logger.Fields{
		"sheet":      sheet,
		"header_row": stats.HeaderRow,
	}).Debugf("Loaded %d tracker rows", stats.RowsRead)

	return out, stats, nil
}

// LoadTrackerDetail reads the tracker for filename matching. The layout is
// looser than LoadTracker: the worksheet falls back to the first one, the
// header row to row 1, and optional columns are found by keywords in their
// header. Only the invoice number column is required.
func (wb *Workbook) LoadTrackerDetail() (models.TrackerDetailSheet, *LoadStats, error) {
	sheet := wb.findSheet(wb.config.TrackerSheets...)
	if sheet == "" {
		sheets := wb.file.GetSheetList()
		if len(sheets) == 0 {
			return models.TrackerDetailSheet{}, nil, apperrors.WorkbookError(apperrors.CodeMissingSheet, strings.Join(wb.config.TrackerSheets, "/"), "", nil)
		}
		sheet = sheets[0]
	}

	rows, err := wb.readRows(sheet)
	if err != nil {
		return models.TrackerDetailSheet{}, nil, err
	}
	t := &table{sheet: sheet, rows: rows, headerRow: max(locateHeader(rows, detailAnchors(), wb.config.HeaderScanRows), 0)}

	cInvoice := t.col(HeaderInvoiceNumber)
	if cInvoice < 0 {
		cInvoice = t.colContaining(func(h string) bool {
			return strings.Contains(h, "FRA") || strings.Contains(h, "FACTURA")
		})
	}
	if cInvoice < 0 {
		return models.TrackerDetailSheet{}, nil, apperrors.WorkbookError(apperrors.CodeMissingColumn, sheet, HeaderInvoiceNumber, nil)
	}

	cAmount := t.col(HeaderAmount)

	cConcept := t.col(HeaderConcept)
	if cConcept < 0 {
		cConcept = t.colContaining(func(h string) bool {
			return strings.Contains(h, "CONCEPTO") || strings.Contains(h, "DESCRIPCION")
		})
	}

	cProvider := t.col(HeaderProvider)
	if cProvider < 0 {
		cProvider = t.colContaining(func(h string) bool { return strings.Contains(h, "PROVEEDOR") })
	}

	cDate := t.col(HeaderInvoiceDate)
	if cDate < 0 {
		cDate = t.colContaining(func(h string) bool {
			return strings.Contains(h, "FECHA") && (strings.Contains(h, "FRA") || strings.Contains(h, "FACTURA"))
		})
	}

	out := models.TrackerDetailSheet{
		HasProvider: cProvider >= 0,
		HasConcept:  cConcept >= 0,
		HasDate:     cDate >= 0,
	}
	stats := t.stats()

	t.each(stats, func(line int, cells []string) {
		out.Rows = append(out.Rows, models.TrackerDetailRow{
			Line:          line,
			InvoiceNumber: text(cells, cInvoice),
			Amount:        numberCell(cells, cAmount),
			Provider:      text(cells, cProvider),
			Concept:       text(cells, cConcept),
			InvoiceDate:   dateCell(cells, cDate),
		})
	})

	wb.logger.WithFields(logger.Fields{
		"sheet":        sheet,
		"header_row":   stats.HeaderRow,
		"has_provider": out.HasProvider,
		"has_concept":  out.HasConcept,
		"has_date":     out.HasDate,
	}).Debugf("Loaded %d tracker detail rows", stats.RowsRead)

	return out, stats, nil
}
