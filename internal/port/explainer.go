package port

import (
	"context"

	"skillmatch/internal/domain"
)

// Explainer narrates a shortlist for a query. Implementations must treat
// explanation as a value-add: a network-backed explainer may fail, but the
// caller always degrades to a deterministic fallback.
type Explainer interface {
	Explain(ctx context.Context, query string, shortlist []domain.Candidate) (domain.Explanation, error)

	// ModelName returns the name of the generator model, or a fixed tag for
	// non-network implementations.
	ModelName() string
}
