package oracle

import (
	"encoding/json"

	"github.com/JonMunkholm/stockmatch/internal/matching"
)

const systemPrompt = `You match supplier invoice lines to products in a stock catalog.
You receive one invoice line ("query") and a short list of catalog candidates.
Pick the candidate that is the same physical product. Suppliers abbreviate,
reorder words and add packaging details; references and model numbers are
strong evidence. If no candidate is the same product, answer null.

Answer with a single JSON object and nothing else:
{"bestMatchId": <candidate id or null>, "confidence": <0-100>, "reasoning": "<one sentence>"}`

type promptCandidate struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Reference   string `json:"reference,omitempty"`
}

type promptInput struct {
	Query      string            `json:"query"`
	Candidates []promptCandidate `json:"candidates"`
}

// buildUserPrompt renders the query and candidates as JSON so descriptions
// containing quotes or newlines cannot break the message structure.
func buildUserPrompt(query string, candidates []matching.Candidate) (string, error) {
	in := promptInput{
		Query:      query,
		Candidates: make([]promptCandidate, 0, len(candidates)),
	}
	for _, c := range candidates {
		in.Candidates = append(in.Candidates, promptCandidate{
			ID:          c.Product.ID,
			Description: c.Product.Description,
			Reference:   c.Product.Reference,
		})
	}

	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
