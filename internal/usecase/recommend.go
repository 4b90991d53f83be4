package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"skillmatch/internal/adapter/cache"
	"skillmatch/internal/adapter/explain"
	"skillmatch/internal/domain"
	"skillmatch/internal/port"
)

// Engine is the facade external collaborators call. It owns the catalogue and
// index as one atomically-swapped unit so they can never drift out of
// alignment, and it is the error boundary: only validation, data, and encoder
// errors escape Recommend.
type Engine struct {
	state     atomic.Pointer[engineState]
	embedder  port.Embedder
	balancer  port.Balancer
	explainer port.Explainer
	results   *cache.ResultCache
	logger    *slog.Logger

	minQueryChars int
	maxTopK       int
	overfetchCap  int
}

// engineState pairs a catalogue snapshot with the index built from it.
// Invariant: index vector at position i describes items[i].
type engineState struct {
	items []domain.Assessment
	index port.Index
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	MinQueryChars int
	MaxTopK       int
	OverfetchCap  int
	ResultCache   *cache.ResultCache
	Logger        *slog.Logger
}

func NewEngine(
	items []domain.Assessment,
	idx port.Index,
	embedder port.Embedder,
	balancer port.Balancer,
	explainer port.Explainer,
	opts EngineOptions,
) (*Engine, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCatalogue
	}
	if idx.Size() != len(items) {
		return nil, fmt.Errorf("index holds %d vectors for %d catalogue items", idx.Size(), len(items))
	}

	if opts.MinQueryChars <= 0 {
		opts.MinQueryChars = 10
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = 10
	}
	if opts.OverfetchCap <= 0 {
		opts.OverfetchCap = 30
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Engine{
		embedder:      embedder,
		balancer:      balancer,
		explainer:     explainer,
		results:       opts.ResultCache,
		logger:        opts.Logger,
		minQueryChars: opts.MinQueryChars,
		maxTopK:       opts.MaxTopK,
		overfetchCap:  opts.OverfetchCap,
	}
	e.state.Store(&engineState{items: items, index: idx})
	return e, nil
}

// Reload swaps in a rebuilt catalogue and index. Concurrent Recommend calls
// see either the old pair or the new pair, never a mix.
func (e *Engine) Reload(items []domain.Assessment, idx port.Index) error {
	if len(items) == 0 {
		return domain.ErrEmptyCatalogue
	}
	if idx.Size() != len(items) {
		return fmt.Errorf("index holds %d vectors for %d catalogue items", idx.Size(), len(items))
	}

	e.state.Store(&engineState{items: items, index: idx})
	if e.results != nil {
		e.results.Invalidate()
	}
	return nil
}

// CatalogueSize returns the number of recommendable items.
func (e *Engine) CatalogueSize() int {
	return len(e.state.Load().items)
}

// Recommend returns the top-k shortlist for a free-text job query.
func (e *Engine) Recommend(ctx context.Context, query string, k int) (domain.RecommendationResult, error) {
	if k < 1 || k > e.maxTopK {
		return domain.RecommendationResult{}, &domain.ValidationError{
			Field:  "top_k",
			Reason: fmt.Sprintf("must be between 1 and %d", e.maxTopK),
		}
	}

	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < e.minQueryChars {
		return domain.RecommendationResult{}, &domain.ValidationError{
			Field:  "query",
			Reason: fmt.Sprintf("must be at least %d characters", e.minQueryChars),
		}
	}

	if e.results != nil {
		if result, hit := e.results.Get(trimmed, k); hit {
			return result, nil
		}
	}

	st := e.state.Load()

	pool, err := e.retrieve(st, trimmed, k)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	balanced := e.balancer.Balance(pool, trimmed)

	shortlist := balanced
	if len(shortlist) > k {
		shortlist = shortlist[:k]
	}

	explanation := e.explain(ctx, trimmed, shortlist)

	result := domain.RecommendationResult{
		Query:       trimmed,
		Shortlist:   shortlist,
		Explanation: explanation.Text,
		BestItemID:  explanation.BestItemID,
	}

	if e.results != nil {
		e.results.Put(trimmed, k, result)
	}

	return result, nil
}

// retrieve encodes the query once and over-fetches min(2k, cap) candidates so
// the balancer has material beyond the naive top-k.
func (e *Engine) retrieve(st *engineState, query string, k int) ([]domain.Candidate, error) {
	vectors, err := e.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: encoder returned no vector", domain.ErrEncoderUnavailable)
	}

	scored := st.index.Score(vectors[0])

	n := 2 * k
	if n > e.overfetchCap {
		n = e.overfetchCap
	}
	if n > len(scored) {
		n = len(scored)
	}

	pool := make([]domain.Candidate, n)
	for i := 0; i < n; i++ {
		pool[i] = domain.Candidate{
			Item:     st.items[scored[i].Position],
			Position: scored[i].Position,
			Score:    scored[i].Score,
		}
	}
	return pool, nil
}

// explain narrates the shortlist, degrading to the deterministic fallback on
// any generator failure. Never returns an error.
func (e *Engine) explain(ctx context.Context, query string, shortlist []domain.Candidate) domain.Explanation {
	result, err := e.explainer.Explain(ctx, query, shortlist)
	if err == nil {
		return result
	}

	e.logger.Warn("explanation degraded to fallback", "error", err)

	best := ""
	if len(shortlist) > 0 {
		best = shortlist[0].Item.ID
	}
	return domain.Explanation{
		Text:       explain.FallbackText,
		BestItemID: best,
	}
}
