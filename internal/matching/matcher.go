package matching

import (
	"context"

	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/logging"
	"github.com/JonMunkholm/stockmatch/internal/metrics"
	"github.com/JonMunkholm/stockmatch/internal/textnorm"
	"github.com/JonMunkholm/stockmatch/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Status is the terminal state of one matched line.
type Status string

const (
	StatusMapped            Status = "MAPPED"
	StatusOracleConfirmed   Status = "ORACLE_CONFIRMED"
	StatusHeuristicFallback Status = "HEURISTIC_FALLBACK"
	StatusUnresolved        Status = "UNRESOLVED"
)

// Source names the stage that produced a result.
type Source string

const (
	SourceMapping   Source = "mapping"
	SourceOracle    Source = "oracle"
	SourceHeuristic Source = "heuristic"
)

// Result is the outcome for one line item. Product is nil only when Status
// is UNRESOLVED.
type Result struct {
	Description string             `json:"description"`
	Status      Status             `json:"status"`
	Source      Source             `json:"source"`
	Product     *inventory.Product `json:"product"`
	Confidence  int                `json:"confidence"`
	Reason      string             `json:"reason"`
	Suggestions []Candidate        `json:"suggestions"`
}

// MappingLookup finds a memoized product id for a normalized label.
type MappingLookup interface {
	Lookup(ctx context.Context, normalizedLabel string) (int64, bool, error)
}

// Matcher sequences mapping lookup, ranking and the oracle for each line.
type Matcher struct {
	mappings    MappingLookup
	oracle      SemanticMatcher
	parallelism int
}

// NewMatcher builds a Matcher. A nil oracle disables semantic re-ranking;
// parallelism below 1 is treated as 1.
func NewMatcher(mappings MappingLookup, oracle SemanticMatcher, parallelism int) *Matcher {
	if oracle == nil {
		oracle = NoOracle{}
	}
	return &Matcher{
		mappings:    mappings,
		oracle:      oracle,
		parallelism: max(parallelism, 1),
	}
}

// MatchAll matches every description against the same catalog snapshot.
// Results come back in input order. The only error is context
// cancellation; per-line failures degrade to fallback states instead.
func (m *Matcher) MatchAll(ctx context.Context, descriptions []string, catalog []inventory.Product) ([]Result, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.match_all",
		attribute.Int("items", len(descriptions)),
		attribute.Int("catalog_size", len(catalog)),
	)
	defer span.End()

	byID := indexCatalog(catalog)
	results, err := runOrdered(ctx, descriptions, m.parallelism, func(ctx context.Context, description string) Result {
		return m.match(ctx, description, catalog, byID)
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return results, nil
}

// Match resolves a single description.
func (m *Matcher) Match(ctx context.Context, description string, catalog []inventory.Product) Result {
	return m.match(ctx, description, catalog, indexCatalog(catalog))
}

func (m *Matcher) match(ctx context.Context, description string, catalog []inventory.Product, byID map[int64]inventory.Product) Result {
	ranked := Rank(description, catalog, TopK)
	res := Result{
		Description: description,
		Suggestions: suggestions(ranked),
	}

	if p, ok := m.mappedProduct(ctx, description, byID); ok {
		res.Status = StatusMapped
		res.Source = SourceMapping
		res.Product = &p
		res.Confidence = 100
		res.Reason = "confirmed supplier mapping"
		return record(res)
	}

	if len(ranked) == 0 || ranked[0].Score == 0 {
		res.Status = StatusUnresolved
		res.Source = SourceHeuristic
		res.Reason = "no catalog product resembles this line"
		return record(res)
	}

	top := ranked[0]
	if top.Score == 100 {
		return record(fallback(res, top, "exact match on reference and description"))
	}

	verdict, err := m.oracle.Rank(ctx, description, ranked)
	if err != nil || verdict == nil {
		logging.FromContext(ctx).Warn("semantic oracle unavailable, using best similarity score",
			"description", description,
			"error", err,
		)
		return record(fallback(res, top, "semantic oracle unavailable; best similarity score"))
	}
	if verdict.BestMatchID == nil {
		return record(fallback(res, top, "semantic oracle found no suitable candidate; best similarity score"))
	}

	chosen, ok := findCandidate(ranked, *verdict.BestMatchID)
	if !ok {
		logging.FromContext(ctx).Warn("semantic oracle picked a product outside the candidates",
			"description", description,
			"product_id", *verdict.BestMatchID,
		)
		return record(fallback(res, top, "semantic oracle answer ignored; best similarity score"))
	}

	res.Status = StatusOracleConfirmed
	res.Source = SourceOracle
	res.Product = &chosen.Product
	res.Confidence = min(max(verdict.Confidence, 0), 100)
	res.Reason = verdict.Reasoning
	if res.Reason == "" {
		res.Reason = "confirmed by semantic oracle"
	}
	return record(res)
}

// mappedProduct returns the memoized product for description if the memo
// has one and it is still in the catalog. Lookup errors count as a miss.
func (m *Matcher) mappedProduct(ctx context.Context, description string, byID map[int64]inventory.Product) (inventory.Product, bool) {
	if m.mappings == nil {
		return inventory.Product{}, false
	}
	label := textnorm.Normalize(description)
	if label == "" {
		return inventory.Product{}, false
	}

	id, found, err := m.mappings.Lookup(ctx, label)
	if err != nil {
		logging.FromContext(ctx).Warn("mapping lookup failed, matching heuristically",
			"label", label,
			"error", err,
		)
		return inventory.Product{}, false
	}
	if !found {
		return inventory.Product{}, false
	}

	p, ok := byID[id]
	if !ok {
		logging.FromContext(ctx).Debug("mapping points at a product missing from the catalog",
			"label", label,
			"product_id", id,
		)
	}
	return p, ok
}

func fallback(res Result, top Candidate, reason string) Result {
	res.Status = StatusHeuristicFallback
	res.Source = SourceHeuristic
	res.Product = &top.Product
	res.Confidence = top.Score
	res.Reason = reason
	return res
}

func findCandidate(ranked []Candidate, productID int64) (Candidate, bool) {
	for _, c := range ranked {
		if c.Product.ID == productID {
			return c, true
		}
	}
	return Candidate{}, false
}

func indexCatalog(catalog []inventory.Product) map[int64]inventory.Product {
	byID := make(map[int64]inventory.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	return byID
}

func record(res Result) Result {
	metrics.MatchResultsTotal.WithLabelValues(string(res.Status)).Inc()
	return res
}
