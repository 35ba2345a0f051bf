package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/metakeule/fmtdate"
	"github.com/shopspring/decimal"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
	dayFirstRegex        = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

// normalizeText strips diacritics, uppercases and collapses everything that is
// not alphanumeric. Used as the matching key for fuzzy customer lookup.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// HasParenNegative reports whether a raw amount uses the accounting
// parenthesized-negative notation, e.g. "(1,250.50)".
func HasParenNegative(raw string) bool {
	s := strings.TrimSpace(raw)
	return strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
}

// NormalizeAmount converts a raw cell value into a decimal. Thousands
// separators are stripped, parenthesized values are negated, and anything
// non-numeric collapses to zero.
func NormalizeAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

// NormalizeDate converts a raw cell value into the canonical YYYY-MM-DD form.
// Policy, in order: excel serial number (epoch 1899-12-30), day-first
// D/M/YYYY (day and month taken verbatim from positions 1 and 2, never
// swapped), a small set of unambiguous calendar layouts, and finally the
// given fallback date. It never fails.
func NormalizeDate(raw string, fallback time.Time) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fmtdate.Format("YYYY-MM-DD", fallback)
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fmtdate.Format("YYYY-MM-DD", excelSerialToDate(serial))
	}

	if m := dayFirstRegex.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return fmtdate.Format("YYYY-MM-DD", t)
	}

	for _, mask := range []string{"YYYY-MM-DD", "YYYY/MM/DD", "DD.MM.YYYY", "MMM D, YYYY", "D MMM YYYY"} {
		if t, err := fmtdate.Parse(mask, s); err == nil {
			return fmtdate.Format("YYYY-MM-DD", t)
		}
	}

	return fmtdate.Format("YYYY-MM-DD", fallback)
}

// excelSerialToDate converts a spreadsheet date serial (days since
// 1899-12-30, fractional part is time of day) to a calendar date.
func excelSerialToDate(serial float64) time.Time {
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	frac := serial - float64(int64(serial))
	duration := time.Duration(int64(serial)*24) * time.Hour
	duration += time.Duration(frac * 24 * float64(time.Hour))
	return base.Add(duration)
}

// NormalizeCustomerName collapses line breaks and repeated whitespace into
// single spaces and trims. Empty input yields the "Unknown" placeholder;
// callers that want to exclude nameless rows must reject the raw value before
// calling this.
func NormalizeCustomerName(raw string) string {
	cleaned := strings.TrimSpace(whitespaceRegex.ReplaceAllString(raw, " "))
	if cleaned == "" {
		return "Unknown"
	}
	return cleaned
}
