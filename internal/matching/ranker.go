package matching

import (
	"sort"
	"strings"

	"github.com/JonMunkholm/stockmatch/internal/inventory"
)

// TopK is how many candidates the ranker keeps and the oracle sees.
const TopK = 5

// maxSuggestions is how many candidates are returned alongside a result.
const maxSuggestions = 3

// Candidate is a catalog product with its deterministic score.
type Candidate struct {
	Product inventory.Product `json:"product"`
	Score   int               `json:"score"`
}

// CandidateText is the string a product is scored on: reference and
// description joined by a space.
func CandidateText(p inventory.Product) string {
	return strings.TrimSpace(p.Reference + " " + p.Description)
}

// Rank scores every product against query and returns the best k, highest
// first. Equal scores keep catalog order.
func Rank(query string, catalog []inventory.Product, k int) []Candidate {
	if len(catalog) == 0 || k <= 0 {
		return nil
	}

	scored := make([]Candidate, len(catalog))
	for i, p := range catalog {
		scored[i] = Candidate{Product: p, Score: Score(query, CandidateText(p))}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// suggestions returns the first maxSuggestions ranked candidates. Zero
// scores are kept so an unresolved line still offers a manual pick.
func suggestions(ranked []Candidate) []Candidate {
	n := min(len(ranked), maxSuggestions)
	out := make([]Candidate, n)
	copy(out, ranked[:n])
	return out
}
