package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount reads an amount written with a decimal comma ("1.234,56").
// Dots before the comma are thousands separators. Without a comma, a single
// dot followed by one or two digits is a decimal point ("15.00"), otherwise
// dots are thousands separators ("1.234").
//
// A dot after the last comma, or more than one comma, is the comma-thousands
// layout ("1,234.56"). That layout is reported as ambiguous with a zero amount
// instead of being guessed. Text without a parseable number yields zero.
func NormalizeAmount(raw string) (amount decimal.Decimal, ambiguous bool) {
	s := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			return r
		}
		return -1
	}, raw)
	s = strings.Trim(s, ".,")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && (lastDot > lastComma || strings.Count(s, ",") > 1):
		return decimal.Zero, true
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && strings.Count(s, ".") == 1 && len(s)-lastDot-1 <= 2:
		// already a decimal point
	default:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, false
}
