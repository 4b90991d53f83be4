package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"skillmatch/internal/adapter/balancer"
	"skillmatch/internal/adapter/cache"
	"skillmatch/internal/adapter/explain"
	"skillmatch/internal/adapter/index"
	"skillmatch/internal/domain"
)

// stubEmbedder returns canned vectors per text and counts calls so tests can
// assert that validation short-circuits before any encoding.
type stubEmbedder struct {
	vectors map[string][]float32
	dim     int
	calls   int
	err     error
}

func (s *stubEmbedder) Embed(texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := s.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, s.dim)
		}
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int    { return s.dim }
func (s *stubEmbedder) ModelName() string { return "stub" }

type failingExplainer struct{}

func (failingExplainer) Explain(context.Context, string, []domain.Candidate) (domain.Explanation, error) {
	return domain.Explanation{}, errors.New("generator timeout")
}

func (failingExplainer) ModelName() string { return "failing" }

const dualSignalQuery = "Java developer who collaborates well with teams"

// testEngine builds an engine over the three-item scenario catalogue:
// A Personality/teamwork, B Knowledge/Java, C Cognitive/numerical reasoning.
func testEngine(t *testing.T, opts EngineOptions) (*Engine, *stubEmbedder) {
	t.Helper()

	items := []domain.Assessment{
		{ID: "a", Name: "Teamwork Styles", URL: "https://example.com/a", Description: "teamwork", Category: domain.CategoryPersonality},
		{ID: "b", Name: "Java Programming", URL: "https://example.com/b", Description: "Java programming", Category: domain.CategoryKnowledge},
		{ID: "c", Name: "Numerical Reasoning", URL: "https://example.com/c", Description: "numerical reasoning", Category: domain.CategoryCognitive},
	}

	idx := index.New([][]float32{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 1},
	}, 3, "stub", "fp")

	embedder := &stubEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			dualSignalQuery: {0.95, 0.3, 0.05},
		},
	}

	engine, err := NewEngine(items, idx, embedder, balancer.New(), explain.NewStaticExplainer(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return engine, embedder
}

func TestRecommend_BalancingScenario(t *testing.T) {
	engine, _ := testEngine(t, EngineOptions{})

	result, err := engine.Recommend(context.Background(), dualSignalQuery, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Shortlist) != 3 {
		t.Fatalf("expected shortlist of 3, got %d", len(result.Shortlist))
	}

	has := map[string]bool{}
	for _, c := range result.Shortlist {
		has[c.Item.ID] = true
		if c.Score < -1 || c.Score > 1 {
			t.Errorf("score %f outside [-1, 1]", c.Score)
		}
	}
	if !has["a"] {
		t.Error("balanced shortlist must include the personality item")
	}
	if !has["b"] {
		t.Error("balanced shortlist must include the knowledge item")
	}

	// Personality partition leads when balancing fires.
	if result.Shortlist[0].Item.ID != "a" {
		t.Errorf("expected personality item first, got %s", result.Shortlist[0].Item.ID)
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	engine, _ := testEngine(t, EngineOptions{})

	first, err := engine.Recommend(context.Background(), dualSignalQuery, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Recommend(context.Background(), dualSignalQuery, 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Shortlist) != len(second.Shortlist) {
		t.Fatalf("shortlist lengths differ: %d vs %d", len(first.Shortlist), len(second.Shortlist))
	}
	for i := range first.Shortlist {
		if first.Shortlist[i].Item.ID != second.Shortlist[i].Item.ID {
			t.Errorf("rank %d: %s vs %s", i, first.Shortlist[i].Item.ID, second.Shortlist[i].Item.ID)
		}
		if first.Shortlist[i].Score != second.Shortlist[i].Score {
			t.Errorf("rank %d: score %f vs %f", i, first.Shortlist[i].Score, second.Shortlist[i].Score)
		}
	}
}

func TestRecommend_ValidationSkipsEncoding(t *testing.T) {
	engine, embedder := testEngine(t, EngineOptions{})

	_, err := engine.Recommend(context.Background(), "short", 5)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if embedder.calls != 0 {
		t.Errorf("validation must happen before encoding, encoder saw %d calls", embedder.calls)
	}

	// Whitespace padding does not rescue a short query.
	_, err = engine.Recommend(context.Background(), "   short        ", 5)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for padded query, got %v", err)
	}

	for _, k := range []int{0, -1, 11} {
		_, err := engine.Recommend(context.Background(), dualSignalQuery, k)
		if !domain.IsValidation(err) {
			t.Errorf("k=%d: expected validation error, got %v", k, err)
		}
	}
	if embedder.calls != 0 {
		t.Errorf("expected no encoder calls, got %d", embedder.calls)
	}
}

func TestRecommend_LengthBound(t *testing.T) {
	engine, _ := testEngine(t, EngineOptions{})

	// k larger than the catalogue: shortlist is the whole catalogue.
	result, err := engine.Recommend(context.Background(), dualSignalQuery, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Shortlist) != 3 {
		t.Errorf("expected min(k, catalogue)=3, got %d", len(result.Shortlist))
	}

	result, err = engine.Recommend(context.Background(), dualSignalQuery, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Shortlist) != 1 {
		t.Errorf("expected shortlist of 1, got %d", len(result.Shortlist))
	}
}

func TestRecommend_EncoderFailureIsFatal(t *testing.T) {
	engine, embedder := testEngine(t, EngineOptions{})
	embedder.err = fmt.Errorf("%w: connection refused", domain.ErrEncoderUnavailable)

	_, err := engine.Recommend(context.Background(), dualSignalQuery, 3)
	if !errors.Is(err, domain.ErrEncoderUnavailable) {
		t.Fatalf("expected encoder error to surface, got %v", err)
	}
}

func TestRecommend_ExplanationDegradesGracefully(t *testing.T) {
	items := []domain.Assessment{
		{ID: "a", Name: "A", URL: "u1", Category: domain.CategoryKnowledge},
		{ID: "b", Name: "B", URL: "u2", Category: domain.CategoryKnowledge},
	}
	idx := index.New([][]float32{{1, 0}, {0, 1}}, 2, "stub", "fp")
	embedder := &stubEmbedder{dim: 2, vectors: map[string][]float32{
		"plain knowledge query": {1, 0.1},
	}}

	engine, err := NewEngine(items, idx, embedder, balancer.New(), failingExplainer{}, EngineOptions{})
	if err != nil {
		t.Fatal(err)
	}

	result, err := engine.Recommend(context.Background(), "plain knowledge query", 2)
	if err != nil {
		t.Fatalf("explainer failure must not fail the request: %v", err)
	}
	if len(result.Shortlist) != 2 {
		t.Fatalf("expected full shortlist, got %d", len(result.Shortlist))
	}
	if result.Explanation != explain.FallbackText {
		t.Errorf("expected fallback explanation, got %q", result.Explanation)
	}
	if result.BestItemID != "a" {
		t.Errorf("expected top-scored best item, got %q", result.BestItemID)
	}
}

func TestRecommend_CacheSkipsRecompute(t *testing.T) {
	engine, embedder := testEngine(t, EngineOptions{
		ResultCache: cache.NewResultCache(10, time.Minute),
	})

	if _, err := engine.Recommend(context.Background(), dualSignalQuery, 3); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := embedder.calls

	if _, err := engine.Recommend(context.Background(), dualSignalQuery, 3); err != nil {
		t.Fatal(err)
	}
	if embedder.calls != callsAfterFirst {
		t.Errorf("second identical call should hit the cache, encoder saw %d extra calls", embedder.calls-callsAfterFirst)
	}
}

func TestReload_SwapsStateAndInvalidatesCache(t *testing.T) {
	resultCache := cache.NewResultCache(10, time.Minute)
	engine, _ := testEngine(t, EngineOptions{ResultCache: resultCache})

	if _, err := engine.Recommend(context.Background(), dualSignalQuery, 3); err != nil {
		t.Fatal(err)
	}

	newItems := []domain.Assessment{
		{ID: "x", Name: "X", URL: "u-x", Category: domain.CategoryGeneral},
	}
	newIdx := index.New([][]float32{{1, 0, 0}}, 3, "stub", "fp-2")
	if err := engine.Reload(newItems, newIdx); err != nil {
		t.Fatal(err)
	}

	if engine.CatalogueSize() != 1 {
		t.Errorf("expected reloaded catalogue size 1, got %d", engine.CatalogueSize())
	}
	if resultCache.Size() != 0 {
		t.Error("reload must invalidate the result cache")
	}

	result, err := engine.Recommend(context.Background(), dualSignalQuery, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Shortlist) != 1 || result.Shortlist[0].Item.ID != "x" {
		t.Errorf("expected results from the reloaded catalogue, got %+v", result.Shortlist)
	}
}

func TestNewEngine_RejectsMisalignedIndex(t *testing.T) {
	items := []domain.Assessment{{ID: "a", URL: "u1"}}
	idx := index.New([][]float32{{1}, {0}}, 1, "stub", "fp")

	if _, err := NewEngine(items, idx, &stubEmbedder{dim: 1}, balancer.New(), explain.NewStaticExplainer(), EngineOptions{}); err == nil {
		t.Fatal("expected alignment error")
	}
}
