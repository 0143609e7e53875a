package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/stockmatch/internal/logging"
	"github.com/JonMunkholm/stockmatch/internal/matching"
	"github.com/JonMunkholm/stockmatch/internal/metrics"
	"github.com/JonMunkholm/stockmatch/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Completer sends a chat prompt and returns the raw answer.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options tunes a Matcher. Zero values fall back to the defaults below.
type Options struct {
	Model         string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Cache         Cache
	CacheTTL      time.Duration
}

// Matcher implements matching.SemanticMatcher on top of a chat model.
// Calls are rate limited process-wide and answers are cached when a
// Cache is configured.
type Matcher struct {
	llm      Completer
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	cache    Cache
	cacheTTL time.Duration
}

var _ matching.SemanticMatcher = (*Matcher)(nil)

func NewMatcher(llm Completer, opts Options) *Matcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 3
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Matcher{
		llm:      llm,
		model:    opts.Model,
		timeout:  opts.Timeout,
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}
}

// Rank asks the model to choose among candidates. Every failure is
// returned wrapped in matching.ErrOracleUnavailable.
func (m *Matcher) Rank(ctx context.Context, query string, candidates []matching.Candidate) (*matching.Verdict, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", matching.ErrOracleUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "oracle.rank",
		attribute.String("model", m.model),
		attribute.Int("candidates", len(candidates)),
	)
	defer span.End()

	key := cacheKey(m.model, query, candidates)
	if v, ok := m.cached(ctx, key); ok {
		metrics.OracleCallsTotal.WithLabelValues("cached").Inc()
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return v, nil
	}

	if err := m.limiter.Wait(ctx); err != nil {
		metrics.OracleCallsTotal.WithLabelValues("rate_limited").Inc()
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("%w: rate limit wait: %w", matching.ErrOracleUnavailable, err)
	}

	start := time.Now()
	v, err := m.ask(ctx, query, candidates)
	metrics.OracleCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OracleCallsTotal.WithLabelValues("error").Inc()
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("%w: %w", matching.ErrOracleUnavailable, err)
	}
	metrics.OracleCallsTotal.WithLabelValues("ok").Inc()

	if m.cache != nil {
		if err := m.cache.Set(ctx, key, v, m.cacheTTL); err != nil {
			logging.FromContext(ctx).Warn("failed to cache oracle verdict", "error", err)
		}
	}
	return v, nil
}

func (m *Matcher) ask(ctx context.Context, query string, candidates []matching.Candidate) (*matching.Verdict, error) {
	user, err := buildUserPrompt(query, candidates)
	if err != nil {
		return nil, err
	}

	answer, err := m.llm.Complete(ctx, systemPrompt, user)
	if err != nil {
		return nil, err
	}
	return parseVerdict(answer)
}

// cached returns a stored verdict. Cache failures are logged and treated as
// a miss so a Redis outage never blocks matching.
func (m *Matcher) cached(ctx context.Context, key string) (*matching.Verdict, bool) {
	if m.cache == nil {
		return nil, false
	}
	v, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Warn("oracle cache read failed", "error", err)
		return nil, false
	}
	return v, ok
}
