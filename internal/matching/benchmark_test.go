package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/JonMunkholm/stockmatch/internal/inventory"
)

// ============================================================================
// Scoring Benchmarks
// ============================================================================

// BenchmarkScore benchmarks one query against one candidate.
// Every line of a match request runs this once per catalog product.
func BenchmarkScore(b *testing.B) {
	testCases := [][2]string{
		{"HP Pav 15", "HP Pavilion 15-dk1000"},
		{"Câble HDMI 2m", "CBL-HDMI-2 Cable HDMI 2 m"},
		{"Papier A4 80g x500", "Ramette papier A4 80 g (500 feuilles)"},
		{"", "Widget A"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			Score(tc[0], tc[1])
		}
	}
}

// ============================================================================
// Ranking Benchmarks
// ============================================================================

func benchCatalog(n int) []inventory.Product {
	catalog := make([]inventory.Product, n)
	for i := range catalog {
		catalog[i] = inventory.Product{
			ID:          int64(i + 1),
			Reference:   fmt.Sprintf("REF-%05d", i),
			Description: fmt.Sprintf("Product model %d series %c", i, 'A'+i%26),
		}
	}
	return catalog
}

// BenchmarkRank_1000 benchmarks ranking against a mid-sized catalog.
func BenchmarkRank_1000(b *testing.B) {
	catalog := benchCatalog(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank("product model 512 series S", catalog, TopK)
	}
}

// BenchmarkMatchAll benchmarks a 20-line invoice without an oracle.
func BenchmarkMatchAll(b *testing.B) {
	catalog := benchCatalog(500)
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = fmt.Sprintf("prod model %d", i*17)
	}

	for _, parallelism := range []int{1, 4} {
		b.Run(fmt.Sprintf("parallelism=%d", parallelism), func(b *testing.B) {
			m := NewMatcher(nil, nil, parallelism)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := m.MatchAll(context.Background(), lines, catalog); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
