package port

// ScoredPosition is one catalogue position with its similarity to a query.
type ScoredPosition struct {
	Position int
	Score    float64
}

// Index scores a query vector against every catalogue item.
type Index interface {
	// Score returns all positions ordered by descending similarity.
	// Ties keep catalogue insertion order (stable sort).
	Score(query []float32) []ScoredPosition

	// Size returns the number of indexed items.
	Size() int

	// Fingerprint identifies the catalogue content this index was built from.
	Fingerprint() string
}
