package port

import "skillmatch/internal/domain"

// Balancer reorders a candidate pool to satisfy topical diversity implied by
// the query. Length-preserving: output has the same members as input.
type Balancer interface {
	Balance(candidates []domain.Candidate, query string) []domain.Candidate
}
