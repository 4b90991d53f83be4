package usecase

import (
	"context"
	"math"
	"testing"
)

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		predicted []string
		truth     []string
		k         int
		want      float64
	}{
		{"perfect", []string{"a", "b"}, []string{"a", "b"}, 2, 1.0},
		{"half", []string{"a", "x", "y"}, []string{"a", "b"}, 3, 0.5},
		{"miss", []string{"x", "y"}, []string{"a"}, 2, 0.0},
		{"k smaller than predictions", []string{"x", "a"}, []string{"a"}, 1, 0.0},
		{"duplicate predictions count once", []string{"a", "a"}, []string{"a", "b"}, 2, 0.5},
		{"empty truth", []string{"a"}, nil, 1, 0.0},
	}

	for _, tt := range tests {
		got := RecallAtK(tt.predicted, tt.truth, tt.k)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: got %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestEvaluate_MeanOverQueries(t *testing.T) {
	engine, _ := testEngine(t, EngineOptions{})
	evaluator := NewEvaluator(engine)

	samples := []QuerySample{
		// The dual-signal query surfaces all three items at k=3.
		{Query: dualSignalQuery, URLs: []string{"https://example.com/a", "https://example.com/b"}},
		// A query with ground truth outside the catalogue scores zero.
		{Query: "completely unrelated gardening role", URLs: []string{"https://example.com/zzz"}},
	}

	report, err := evaluator.Evaluate(context.Background(), samples, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.PerQuery) != 2 {
		t.Fatalf("expected 2 per-query entries, got %d", len(report.PerQuery))
	}
	if report.PerQuery[0].Recall != 1.0 {
		t.Errorf("expected recall 1.0 for first query, got %f", report.PerQuery[0].Recall)
	}
	if report.PerQuery[1].Recall != 0.0 {
		t.Errorf("expected recall 0.0 for second query, got %f", report.PerQuery[1].Recall)
	}
	if math.Abs(report.MeanRecall-0.5) > 1e-9 {
		t.Errorf("expected mean recall 0.5, got %f", report.MeanRecall)
	}
}
