package index

import (
	"math"
	"sort"

	"skillmatch/internal/port"
)

// VectorIndex holds one unit-normalized embedding per catalogue item,
// position-aligned with the loaded catalogue. Immutable once built; rebuilds
// produce a fresh index that the owner swaps in whole.
type VectorIndex struct {
	vectors     [][]float32
	dimension   int
	model       string
	fingerprint string
}

// New builds an index from raw embeddings. Vectors are normalized on
// ingestion so scoring is a plain dot product.
func New(vectors [][]float32, dimension int, model, fingerprint string) *VectorIndex {
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		normalized[i] = Normalize(v)
	}
	return &VectorIndex{
		vectors:     normalized,
		dimension:   dimension,
		model:       model,
		fingerprint: fingerprint,
	}
}

// Score computes cosine similarity of the query against every stored vector
// and returns all positions in descending score order. The sort is stable, so
// ties keep catalogue insertion order and results are reproducible.
func (x *VectorIndex) Score(query []float32) []port.ScoredPosition {
	q := Normalize(query)

	results := make([]port.ScoredPosition, len(x.vectors))
	for i, v := range x.vectors {
		results[i] = port.ScoredPosition{Position: i, Score: dot(q, v)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

func (x *VectorIndex) Size() int {
	return len(x.vectors)
}

func (x *VectorIndex) Fingerprint() string {
	return x.fingerprint
}

// Model returns the encoder model identifier the index was built with.
func (x *VectorIndex) Model() string {
	return x.model
}

// Dimension returns the embedding vector dimension.
func (x *VectorIndex) Dimension() int {
	return x.dimension
}

// Vectors exposes the stored vectors for persistence.
func (x *VectorIndex) Vectors() [][]float32 {
	return x.vectors
}

// Normalize returns a unit-length copy of v. A zero vector is returned as a
// zero-filled copy rather than dividing by zero.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
