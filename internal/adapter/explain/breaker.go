package explain

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"skillmatch/internal/domain"
	"skillmatch/internal/port"
)

// BreakerExplainer wraps a network-backed explainer with a circuit breaker so
// a flapping generator stops being called for a cooldown window instead of
// adding its timeout to every request. An open breaker surfaces as an error,
// which the engine degrades the same way as any generator failure.
type BreakerExplainer struct {
	inner   port.Explainer
	breaker *gobreaker.CircuitBreaker[domain.Explanation]
}

func NewBreakerExplainer(inner port.Explainer, maxFailures int) *BreakerExplainer {
	if maxFailures <= 0 {
		maxFailures = 3
	}

	settings := gobreaker.Settings{
		Name:    "explainer",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
	}

	return &BreakerExplainer{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[domain.Explanation](settings),
	}
}

func (e *BreakerExplainer) Explain(ctx context.Context, query string, shortlist []domain.Candidate) (domain.Explanation, error) {
	return e.breaker.Execute(func() (domain.Explanation, error) {
		return e.inner.Explain(ctx, query, shortlist)
	})
}

func (e *BreakerExplainer) ModelName() string {
	return e.inner.ModelName()
}
