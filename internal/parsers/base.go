// Package parsers reads the ledger and invoice-tracking workbooks into the
// typed rows consumed by the reconciliation core.
//
// Worksheets are located by name, ignoring case. Within a worksheet the header
// row is the first of the leading rows (60 by default) that holds every
// required header, compared trimmed and case-insensitively. Cells are read raw
// and typed by the role of their column: amount columns become numbers when
// they parse as one, date columns turn Excel serial numbers into dates, and
// everything else stays text.
//
// Missing worksheets and headers are structural errors: the loaders return a
// parse-category error and no rows. Unreadable cell values are not errors;
// they are passed on as text for the core to default.
//
// Example usage:
//
//	wb, err := parsers.Open("CUADRE_TRAVIA_251105.xlsx", nil)
//	if err != nil {
//		return err
//	}
//	defer wb.Close()
//
//	ledger, stats, err := wb.LoadLedger()
//	tracker, _, err := wb.LoadTracker()
package parsers

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/textnorm"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// LoadStats describes how a worksheet was read
type LoadStats struct {
	Sheet string `json:"sheet" yaml:"sheet"`
	// HeaderRow is the 1-based row number of the header row
	HeaderRow int `json:"header_row" yaml:"header_row"`
	RowsRead  int `json:"rows_read" yaml:"rows_read"`
	EmptyRows int `json:"empty_rows" yaml:"empty_rows"`
}

// Workbook is an opened spreadsheet file
type Workbook struct {
	name   string
	file   *excelize.File
	config *LoaderConfig
	logger logger.Logger
}

// Open opens the workbook at path
func Open(path string, config *LoaderConfig) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		case os.IsPermission(err):
			return nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
		default:
			return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
		}
	}
	defer f.Close()

	return OpenReader(f, filepath.Base(path), config)
}

// OpenReader reads a workbook from r. name is only used in messages.
func OpenReader(r io.Reader, name string, config *LoaderConfig) (*Workbook, error) {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "parsers", err.Error(), err)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, name, err)
	}

	log := logger.WithComponent("parsers").WithField("workbook", name)
	log.WithField("sheets", f.GetSheetList()).Debug("Opened workbook")

	return &Workbook{
		name:   name,
		file:   f,
		config: config,
		logger: log,
	}, nil
}

// Name returns the file name the workbook was opened with
func (wb *Workbook) Name() string {
	return wb.name
}

// SheetNames lists the worksheets in workbook order
func (wb *Workbook) SheetNames() []string {
	return wb.file.GetSheetList()
}

// Close releases the workbook
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// findSheet returns the actual name of the first candidate present in the
// workbook, ignoring case, or "".
func (wb *Workbook) findSheet(candidates ...string) string {
	sheets := wb.file.GetSheetList()
	for _, want := range candidates {
		for _, have := range sheets {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return have
			}
		}
	}
	return ""
}

// readRows returns the raw cell values of a worksheet
func (wb *Workbook) readRows(sheet string) ([][]string, error) {
	rows, err := wb.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.WorkbookError(apperrors.CodeInvalidWorkbook, sheet, "", err)
	}
	return rows, nil
}

// firstSheetWithData returns the first worksheet holding any non-blank cell
func (wb *Workbook) firstSheetWithData() (string, [][]string, error) {
	for _, sheet := range wb.file.GetSheetList() {
		rows, err := wb.readRows(sheet)
		if err != nil {
			return "", nil, err
		}
		for _, row := range rows {
			if !blankRow(row) {
				return sheet, rows, nil
			}
		}
	}
	return "", nil, apperrors.WorkbookError(apperrors.CodeMissingSheet, "(any)", "", nil)
}

// table is a worksheet whose header row has been located
type table struct {
	sheet     string
	rows      [][]string
	headerRow int
}

// newTable locates the header row holding every required header
func (wb *Workbook) newTable(sheet string, rows [][]string, required []string) (*table, error) {
	r := locateHeader(rows, required, wb.config.HeaderScanRows)
	if r < 0 {
		missing := missingHeader(rows, required, wb.config.HeaderScanRows)
		return nil, apperrors.WorkbookError(apperrors.CodeMissingColumn, sheet, missing, nil)
	}
	return &table{sheet: sheet, rows: rows, headerRow: r}, nil
}

// locateHeader returns the 0-based index of the first row, among the first
// scan rows, that contains every required header. It returns -1 otherwise.
func locateHeader(rows [][]string, required []string, scan int) int {
	limit := min(scan, len(rows))
	for r := 0; r < limit; r++ {
		found := true
		for _, h := range required {
			if headerIndex(rows[r], h) < 0 {
				found = false
				break
			}
		}
		if found {
			return r
		}
	}
	return -1
}

// missingHeader names the first required header absent from every scanned
// row, or all of them when they exist only on different rows.
func missingHeader(rows [][]string, required []string, scan int) string {
	limit := min(scan, len(rows))
	for _, h := range required {
		seen := false
		for r := 0; r < limit && !seen; r++ {
			seen = headerIndex(rows[r], h) >= 0
		}
		if !seen {
			return h
		}
	}
	return strings.Join(required, ", ")
}

// headerIndex finds name in a header row, trimmed and ignoring case
func headerIndex(row []string, name string) int {
	for i, cell := range row {
		if strings.EqualFold(strings.TrimSpace(cell), name) {
			return i
		}
	}
	return -1
}

func (t *table) headers() []string {
	if t.headerRow < 0 || t.headerRow >= len(t.rows) {
		return nil
	}
	return t.rows[t.headerRow]
}

// col returns the index of the named column, or -1
func (t *table) col(name string) int {
	return headerIndex(t.headers(), name)
}

// colContaining returns the first column whose folded header satisfies match
func (t *table) colContaining(match func(folded string) bool) int {
	for i, h := range t.headers() {
		if match(textnorm.FoldTrim(h)) {
			return i
		}
	}
	return -1
}

// each calls fn for every non-blank row below the header with its 1-based
// sheet row number.
func (t *table) each(stats *LoadStats, fn func(line int, cells []string)) {
	for i := t.headerRow + 1; i < len(t.rows); i++ {
		cells := t.rows[i]
		if blankRow(cells) {
			stats.EmptyRows++
			continue
		}
		stats.RowsRead++
		fn(i+1, cells)
	}
}

func (t *table) stats() *LoadStats {
	return &LoadStats{Sheet: t.sheet, HeaderRow: t.headerRow + 1}
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// text returns the raw value at col, or "" when the column is absent
func text(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// numberCell types an amount column value
func numberCell(cells []string, col int) models.Cell {
	raw := strings.TrimSpace(text(cells, col))
	if raw == "" {
		return models.Cell{}
	}
	if d, err := decimal.NewFromString(raw); err == nil {
		return models.NumberCell(d)
	}
	return models.TextCell(raw)
}

// dateCell types a date column value. Numbers are Excel serial dates.
func dateCell(cells []string, col int) models.Cell {
	raw := strings.TrimSpace(text(cells, col))
	if raw == "" {
		return models.Cell{}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return models.DateCell(t)
		}
	}
	return models.TextCell(raw)
}
