package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only punctuation", " -- / ** ", ""},
		{"lower cases", "HP Pavilion", "hp pavilion"},
		{"folds accents", "Câble Électrique Façade", "cable electrique facade"},
		{"collapses separators", "Vis  M6x20 -- inox/A2", "vis m6x20 inox a2"},
		{"keeps digits", "Ref. 15-DK1000", "ref 15 dk1000"},
		{"trims", "  Widget A\t\n", "widget a"},
		{"non latin letters", "Болт M8", "болт m8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"HP Pav 15",
		"Désignation: Écrou HEX M8 (x100)",
		"ÀÉÎÕÜ ñ ç ß",
		" non-breaking space",
		"İstanbul",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func FuzzNormalize_Idempotent(f *testing.F) {
	for _, seed := range []string{"", "Widget A", "Câble 2,5mm²", "HP Pavilion 15-dk1000", "☃ snow ☃"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(%q) = %q, second pass = %q", s, once, twice)
		}
	})
}

func TestTokens(t *testing.T) {
	got := Tokens("Écrou HEX, M8 x 100")
	want := []string{"ecrou", "hex", "m8", "x", "100"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}

	if got := Tokens("  "); len(got) != 0 {
		t.Errorf("Tokens(blank) = %v, want empty", got)
	}
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("vis vis VIS inox")
	if len(set) != 2 {
		t.Errorf("TokenSet size = %d, want 2", len(set))
	}
	for _, tok := range []string{"vis", "inox"} {
		if _, ok := set[tok]; !ok {
			t.Errorf("TokenSet missing %q", tok)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"HP Pavilion 15-dk1000", []string{"15", "1000"}},
		{"Câble 2,5mm 100m", []string{"2,5", "100"}},
		{"Prix 12.50", []string{"12.50"}},
		{"no digits", nil},
	}

	for _, tt := range tests {
		got := Numbers(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Numbers(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
