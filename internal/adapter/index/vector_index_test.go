package index

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	length := math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]))
	if math.Abs(length-1.0) > 1e-6 {
		t.Errorf("expected unit length, got %f", length)
	}

	zero := Normalize([]float32{0, 0, 0})
	for _, f := range zero {
		if f != 0 {
			t.Errorf("zero vector must normalize to zero, got %v", zero)
		}
	}
}

func TestScore_OrderingAndBounds(t *testing.T) {
	idx := New([][]float32{
		{0, 1, 0}, // position 0
		{1, 0, 0}, // position 1
		{0, 0, 1}, // position 2
	}, 3, "mock", "fp")

	results := idx.Score([]float32{1, 0.2, 0})

	if len(results) != 3 {
		t.Fatalf("expected all positions scored, got %d", len(results))
	}
	if results[0].Position != 1 {
		t.Errorf("expected position 1 first, got %d", results[0].Position)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
	for _, r := range results {
		if r.Score < -1.0-1e-9 || r.Score > 1.0+1e-9 {
			t.Errorf("score %f outside [-1, 1]", r.Score)
		}
	}
}

func TestScore_StableTies(t *testing.T) {
	// Identical vectors produce identical scores; catalogue order must win.
	idx := New([][]float32{
		{1, 0},
		{1, 0},
		{1, 0},
	}, 2, "mock", "fp")

	results := idx.Score([]float32{1, 0})
	for i, r := range results {
		if r.Position != i {
			t.Errorf("tie at rank %d resolved to position %d, want %d", i, r.Position, i)
		}
	}
}

func TestScore_CosineValue(t *testing.T) {
	idx := New([][]float32{{1, 0}}, 2, "mock", "fp")

	results := idx.Score([]float32{1, 1})
	expected := 1.0 / math.Sqrt2
	if math.Abs(results[0].Score-expected) > 1e-6 {
		t.Errorf("expected cosine %.6f, got %.6f", expected, results[0].Score)
	}
}
