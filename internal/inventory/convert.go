package inventory

// convert.go turns the text that comes off scanned invoices into typed values
// and moves those values in and out of pgtype.
//
// OCR output is messy:
//   - comma or dot decimals, spaces and dots as thousands separators
//   - currency symbols and codes glued to amounts
//   - day-first dates in several separators, sometimes with 2-digit years
//
// Parse failures are not errors here: amounts default to zero and dates to
// "no date".

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var numericRegex = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

// TwoDigitYearPivot: 2-digit years landing more than this many years in the
// future are moved back a century.
var TwoDigitYearPivot = 20

var (
	// Day-first comes before ISO because invoices are European.
	fourDigitYearLayouts = []string{
		"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02.01.2006", "2.1.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2 Jan 2006", "02 Jan 2006", "2 January 2006", "Jan 2, 2006", "January 2, 2006",
		"20060102",
		time.RFC3339,
	}
	twoDigitYearLayouts = []string{
		"02/01/06", "2/1/06", "02-01-06", "02.01.06",
	}
)

// ParseAmount reads a monetary or quantity amount. Unparseable input gives
// zero.
//
//	"1 250,00 €" -> 1250.00
//	"1.250,50"   -> 1250.50
//	"1,250.50"   -> 1250.50
//	"1,250"      -> 1250
//	"(12,5)"     -> -12.5
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r), r == ',', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			negative = !negative
		}
	}
	cleaned := normalizeSeparators(b.String())

	if !numericRegex.MatchString(cleaned) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

// normalizeSeparators keeps the last '.' or ',' as the decimal point and
// drops every other separator. A lone separator followed by exactly three
// digits after a non-zero integer part is a thousands separator.
func normalizeSeparators(s string) string {
	last := strings.LastIndexAny(s, ".,")
	if last < 0 {
		return s
	}
	if strings.IndexAny(s, ".,") == last && len(s)-last-1 == 3 {
		if intPart := s[:last]; intPart != "" && strings.TrimLeft(intPart, "0") != "" {
			return intPart + s[last+1:]
		}
	}
	intPart := strings.NewReplacer(".", "", ",", "").Replace(s[:last])
	return intPart + "." + s[last+1:]
}

// ParseDate reads an invoice date. Returns nil when no layout matches.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return &t
		}
	}

	return nil
}

func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func fromPgDate(d pgtype.Date) *time.Time {
	if !d.Valid || d.InfinityModifier != pgtype.Finite {
		return nil
	}
	t := d.Time
	return &t
}

// Column bounds: invoices.total_amount is NUMERIC(14,2) and
// products.unit_price is NUMERIC(14,4).
var (
	maxInvoiceTotal = decimal.New(1, 12)
	MaxUnitPrice    = decimal.New(1, 10)
)

// invoiceTotal parses an invoice total rounded to cents. Totals the column
// cannot hold become zero like any other unreadable total.
func invoiceTotal(s string) decimal.Decimal {
	d := ParseAmount(s).Round(2)
	if d.Abs().GreaterThanOrEqual(maxInvoiceTotal) {
		return decimal.Zero
	}
	return d
}

// ToNumeric converts a decimal to pgtype.Numeric without a string round trip.
func ToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// FromNumeric converts a pgtype.Numeric to a decimal. NULL, NaN and
// infinities read as zero.
func FromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
