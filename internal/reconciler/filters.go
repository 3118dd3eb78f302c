package reconciler

import (
	"fmt"
	"strings"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/textnorm"
)

// Period restricts ledger rows to one calendar month. The zero value means
// no restriction.
type Period struct {
	Year  int `json:"year,omitempty" yaml:"year,omitempty"`
	Month int `json:"month,omitempty" yaml:"month,omitempty"`
	// Inferred is true when the period came from the file name rather than
	// from an explicit request.
	Inferred bool `json:"inferred,omitempty" yaml:"inferred,omitempty"`
}

// IsSet reports whether the period restricts anything
func (p Period) IsSet() bool {
	return p.Year > 0 && p.Month > 0
}

// Contains reports whether the cell's date falls in the period
func (p Period) Contains(date models.Cell) bool {
	if !p.IsSet() {
		return true
	}
	return models.IsSameMonth(date, p.Year, p.Month)
}

func (p Period) String() string {
	if !p.IsSet() {
		return "all"
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// ResolvePeriod returns the explicit period when both year and month are
// positive, else the one inferred from the source file name, else none.
func ResolvePeriod(sourceName string, year, month int) Period {
	if year > 0 && month > 0 {
		return Period{Year: year, Month: month}
	}
	if p, ok := DetectPeriod(sourceName); ok {
		return p
	}
	return Period{}
}

// DetectPeriod reads the period from the first YYMMDD run of a file name
func DetectPeriod(sourceName string) (Period, bool) {
	y, m, _, ok := models.DateFromName(sourceName)
	if !ok {
		return Period{}, false
	}
	return Period{Year: y, Month: m, Inferred: true}, true
}

// DetectCompany returns the first code, in list order, that appears in the
// folded file name. An empty result matches every company.
func DetectCompany(sourceName string, codes []string) string {
	folded := textnorm.Fold(sourceName)
	for _, code := range codes {
		code = textnorm.FoldTrim(code)
		if code != "" && strings.Contains(folded, code) {
			return code
		}
	}
	return ""
}

// CompanyMatches reports whether a company cell belongs to the detected
// company. An empty code accepts everything.
func CompanyMatches(cell, code string) bool {
	if code == "" {
		return true
	}
	return strings.Contains(textnorm.Fold(cell), code)
}

// Filter is the per-run row filter derived from the request
type Filter struct {
	Company string `json:"company,omitempty" yaml:"company,omitempty"`
	Period  Period `json:"period" yaml:"period"`
}
