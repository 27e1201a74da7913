package parser

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in        string
		want      string
		ambiguous bool
	}{
		{in: "1.234,56", want: "1234.56"},
		{in: "1234,56", want: "1234.56"},
		{in: "Bs. 12.345.678,90", want: "12345678.9"},
		{in: "150,00.", want: "150"},
		{in: "15.00", want: "15"},
		{in: "15.5", want: "15.5"},
		{in: "1.234", want: "1234"},
		{in: "1.234.567", want: "1234567"},
		{in: "42", want: "42"},
		{in: "", want: "0"},
		{in: "abc", want: "0"},
		{in: ",", want: "0"},
		{in: "1,234.56", want: "0", ambiguous: true},
		{in: "1,234,567", want: "0", ambiguous: true},
	}

	for _, tt := range tests {
		got, ambiguous := NormalizeAmount(tt.in)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("NormalizeAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if ambiguous != tt.ambiguous {
			t.Errorf("NormalizeAmount(%q) ambiguous = %v, want %v", tt.in, ambiguous, tt.ambiguous)
		}
	}
}

func TestNormalizeAmountIdempotentOnNormalizedDecimals(t *testing.T) {
	for _, in := range []string{"15.00", "0.5", "1234.56", "7"} {
		first, _ := NormalizeAmount(in)
		second, _ := NormalizeAmount(first.StringFixed(2))
		if !first.Equal(second) {
			t.Errorf("normalize not idempotent for %q: %s then %s", in, first, second)
		}
	}
}
