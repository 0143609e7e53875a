package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "0"},
		{name: "integer", input: "42", want: "42"},
		{name: "dot decimal", input: "12.50", want: "12.5"},
		{name: "comma decimal", input: "12,50", want: "12.5"},
		{name: "space thousands with comma decimal", input: "1 250,00", want: "1250"},
		{name: "non-breaking space thousands", input: "1 250,75", want: "1250.75"},
		{name: "dot thousands with comma decimal", input: "1.250,50", want: "1250.5"},
		{name: "comma thousands with dot decimal", input: "1,250.50", want: "1250.5"},
		{name: "trailing currency", input: "99,90 €", want: "99.9"},
		{name: "currency code prefix", input: "MAD 1 200", want: "1200"},
		{name: "dollar sign", input: "$15", want: "15"},
		{name: "accounting negative", input: "(12,5)", want: "-12.5"},
		{name: "leading minus", input: "-3", want: "-3"},
		{name: "lone comma thousands", input: "1,250", want: "1250"},
		{name: "lone dot thousands", input: "12.500", want: "12500"},
		{name: "lone comma with two decimals", input: "1,25", want: "1.25"},
		{name: "lone comma with four decimals", input: "1,2500", want: "1.25"},
		{name: "zero integer part keeps decimals", input: "0,125", want: "0.125"},
		{name: "leading separator with three digits", input: ",125", want: "0.125"},
		{name: "garbage", input: "n/a", want: "0"},
		{name: "lone separator", input: ".", want: "0"},
		{name: "leading decimal point", input: ",75", want: "0.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // "" means nil
	}{
		{name: "empty", input: "", want: ""},
		{name: "iso", input: "2024-03-15", want: "2024-03-15"},
		{name: "day first slash", input: "15/03/2024", want: "2024-03-15"},
		{name: "ambiguous is day first", input: "03/04/2024", want: "2024-04-03"},
		{name: "day first dash", input: "05-11-2023", want: "2023-11-05"},
		{name: "day first dots", input: "01.02.2024", want: "2024-02-01"},
		{name: "single digits", input: "5/1/2024", want: "2024-01-05"},
		{name: "month name", input: "7 Mar 2024", want: "2024-03-07"},
		{name: "two digit year", input: "15/03/24", want: "2024-03-15"},
		{name: "compact", input: "20240315", want: "2024-03-15"},
		{name: "rfc3339 drops time", input: "2024-03-15T10:30:00Z", want: "2024-03-15"},
		{name: "invalid day", input: "32/01/2024", want: ""},
		{name: "free text", input: "sometime in march", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == "" {
				if got != nil {
					t.Errorf("ParseDate(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %s", tt.input, tt.want)
			}
			if s := got.Format("2006-01-02"); s != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, s, tt.want)
			}
		})
	}
}

func TestParseDate_TwoDigitPivot(t *testing.T) {
	got := ParseDate("01/01/99")
	if got == nil {
		t.Fatal("ParseDate returned nil")
	}
	if got.Year() != 1999 {
		t.Errorf("year = %d, want 1999", got.Year())
	}
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "2", "12.5", "1250.7500", "-3.14", "0.0001"} {
		d := decimal.RequireFromString(s)
		back := FromNumeric(ToNumeric(d))
		if !back.Equal(d) {
			t.Errorf("round trip %s = %s", d, back)
		}
	}
}

func TestFromNumeric_Invalid(t *testing.T) {
	var zero = ToNumeric(decimal.Zero)
	zero.Valid = false
	if got := FromNumeric(zero); !got.IsZero() {
		t.Errorf("FromNumeric(NULL) = %s, want 0", got)
	}
}

func TestFromPgDate(t *testing.T) {
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := fromPgDate(toPgDate(&d)); got == nil || !got.Equal(d) {
		t.Errorf("fromPgDate(toPgDate(%v)) = %v", d, got)
	}
	if got := fromPgDate(toPgDate(nil)); got != nil {
		t.Errorf("fromPgDate(NULL) = %v, want nil", got)
	}
}
