package explain

import (
	"context"

	"skillmatch/internal/domain"
)

// StaticExplainer is the no-network implementation: fixed text, best item is
// always the top-scored candidate. It never fails.
type StaticExplainer struct{}

func NewStaticExplainer() *StaticExplainer {
	return &StaticExplainer{}
}

func (e *StaticExplainer) Explain(_ context.Context, _ string, shortlist []domain.Candidate) (domain.Explanation, error) {
	best := ""
	if len(shortlist) > 0 {
		best = shortlist[0].Item.ID
	}
	return domain.Explanation{
		Text:       FallbackText,
		BestItemID: best,
	}, nil
}

func (e *StaticExplainer) ModelName() string {
	return "static"
}
