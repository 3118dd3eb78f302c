package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SafeNumber converts a cell to an exact decimal. Numeric cells pass through;
// text is parsed with ParseAmountText. Anything else is zero. It never fails.
func SafeNumber(c Cell) decimal.Decimal {
	switch c.Kind {
	case CellNumber:
		return c.Number
	case CellText:
		return ParseAmountText(c.Text)
	default:
		return decimal.Zero
	}
}

// ParseAmountText parses a human formatted amount. When a comma appears after
// the last dot the comma is the decimal separator and dots group thousands
// ("1.234,56"); otherwise commas group thousands ("1,234.56"). Currency
// symbols, spaces and accounting parentheses are tolerated. Unparseable text
// yields zero.
func ParseAmountText(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.NewReplacer("€", "", "$", "", " ", "", "\u00a0", "").Replace(s)
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}

	if strings.Contains(s, ",") && strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		// "1.234.567": dots as thousands only
		d, err = decimal.NewFromString(strings.ReplaceAll(s, ".", ""))
		if err != nil {
			return decimal.Zero
		}
	}
	if negative {
		d = d.Neg()
	}
	return d
}

// Round2 rounds to cents using banker's rounding
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/06",
	"2006/01/02",
}

// ParseCellDate returns the date held by a cell. Date cells pass through and
// text cells are tried against day-first layouts. ok is false otherwise.
func ParseCellDate(c Cell) (t time.Time, ok bool) {
	switch c.Kind {
	case CellDate:
		return c.Time, true
	case CellText:
		return ParseDateText(c.Text)
	default:
		return time.Time{}, false
	}
}

// ParseDateText tries the supported layouts in order
func ParseDateText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsSameMonth reports whether the cell holds a date in the given year and
// month. Unparseable dates report false so period filters fail closed.
func IsSameMonth(c Cell, year, month int) bool {
	t, ok := ParseCellDate(c)
	if !ok {
		return false
	}
	return t.Year() == year && int(t.Month()) == month
}

// YYMMDD formats t the way dates are embedded in scanned file names
func YYMMDD(t time.Time) string {
	return t.Format("060102")
}

var reSixDigits = regexp.MustCompile(`\d{6}`)

// DateFromName reads the first 6-digit run of name as YYMMDD. ok is false
// when there is no run or the month/day are out of range.
func DateFromName(name string) (year, month, day int, ok bool) {
	m := reSixDigits.FindString(name)
	if m == "" {
		return 0, 0, 0, false
	}
	return splitYYMMDD(m)
}

func splitYYMMDD(s string) (year, month, day int, ok bool) {
	yy, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	dd, _ := strconv.Atoi(s[4:6])
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return 0, 0, 0, false
	}
	return 2000 + yy, mm, dd, true
}

var reDigitRuns = regexp.MustCompile(`\d+`)

// DateTokens returns every standalone 6-digit run of s that reads as a valid
// YYMMDD. Runs embedded in longer digit runs are ignored.
func DateTokens(s string) []string {
	var out []string
	for _, run := range reDigitRuns.FindAllString(s, -1) {
		if len(run) != 6 {
			continue
		}
		if _, _, _, ok := splitYYMMDD(run); ok {
			out = append(out, run)
		}
	}
	return out
}
