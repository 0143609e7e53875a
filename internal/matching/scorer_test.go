package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Identity(t *testing.T) {
	for _, s := range []string{"Widget A", "HP Pavilion 15-dk1000", "Câble 2,5mm", "x"} {
		assert.Equal(t, 100, Score(s, s), s)
	}
}

func TestScore_EmptyInputs(t *testing.T) {
	assert.Equal(t, 0, Score("", "Widget A"))
	assert.Equal(t, 0, Score("Widget A", ""))
	assert.Equal(t, 0, Score("---", "Widget A"))
}

func TestScore_AbbreviatedQuery(t *testing.T) {
	got := Score("HP Pav 15", "HP Pavilion 15-dk1000")
	assert.Greater(t, got, 50)
}

func TestScore_IgnoresCaseAndAccents(t *testing.T) {
	assert.Equal(t, 100, Score("CÂBLE ÉLECTRIQUE", "cable electrique"))
}

func TestScore_NumericBonus(t *testing.T) {
	with := Score("Vis M6 40", "Vis inox 40")
	without := Score("Vis M6 41", "Vis inox 40")
	assert.Greater(t, with, without)
}

func TestScore_BonusIsClamped(t *testing.T) {
	// identical strings with a shared number would exceed 1.0 before clamping
	assert.Equal(t, 100, Score("Widget 40", "Widget 40"))
}

func TestScore_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "zzzzzzzzzzzzzzzzzzzzzz"},
		{"12 12 12", "12"},
		{"Écrou", "ecrou 8"},
		{"☃", "snow"},
		{"same 1", "same 1 1 1 1 1"},
	}
	for _, p := range pairs {
		got := Score(p[0], p[1])
		assert.GreaterOrEqual(t, got, 0, "%q vs %q", p[0], p[1])
		assert.LessOrEqual(t, got, 100, "%q vs %q", p[0], p[1])
	}
}

func TestScore_UnrelatedIsLow(t *testing.T) {
	assert.Less(t, Score("Imprimante laser", "Vis inox M6"), 30)
}

func TestTokenSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, tokenSimilarity("a b", "b a"), 1e-9)
	assert.InDelta(t, 0.4, tokenSimilarity("hp pav 15", "hp pavilion 15 dk1000"), 1e-9)
	assert.InDelta(t, 0.0, tokenSimilarity("a", "b"), 1e-9)
}

func TestEditSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, editSimilarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, editSimilarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.75, editSimilarity("abcd", "abce"), 1e-9)
}
