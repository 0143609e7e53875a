package matching

import (
	"context"
	"errors"
)

// ErrOracleUnavailable covers every way the semantic oracle can fail to
// give a usable answer: transport errors, timeouts, bad output.
var ErrOracleUnavailable = errors.New("semantic oracle unavailable")

// Verdict is the oracle's pick among the candidates it was shown.
// BestMatchID is nil when the oracle found no suitable candidate.
type Verdict struct {
	BestMatchID *int64 `json:"bestMatchId"`
	Confidence  int    `json:"confidence"`
	Reasoning   string `json:"reasoning"`
}

// SemanticMatcher re-ranks deterministic candidates with external judgment.
// Any returned error is treated as "oracle unavailable".
type SemanticMatcher interface {
	Rank(ctx context.Context, query string, candidates []Candidate) (*Verdict, error)
}

// NoOracle is the SemanticMatcher used when no oracle is configured.
type NoOracle struct{}

func (NoOracle) Rank(context.Context, string, []Candidate) (*Verdict, error) {
	return nil, ErrOracleUnavailable
}
