package usecase

import "context"

// QuerySample is one labelled evaluation row: a query and the URLs of the
// assessments a human judged relevant to it.
type QuerySample struct {
	Query string
	URLs  []string
}

// QueryRecall is the per-query evaluation outcome.
type QueryRecall struct {
	Query     string
	Truth     int
	Predicted int
	Recall    float64
}

// EvalReport aggregates recall over an evaluation set.
type EvalReport struct {
	K          int
	PerQuery   []QueryRecall
	MeanRecall float64
}

// Evaluator measures mean Recall@K of an engine against labelled samples.
type Evaluator struct {
	engine *Engine
}

func NewEvaluator(engine *Engine) *Evaluator {
	return &Evaluator{engine: engine}
}

// Evaluate runs every sample through the engine and reports recall@k.
func (ev *Evaluator) Evaluate(ctx context.Context, samples []QuerySample, k int) (*EvalReport, error) {
	report := &EvalReport{K: k}

	var total float64
	for _, sample := range samples {
		result, err := ev.engine.Recommend(ctx, sample.Query, k)
		if err != nil {
			return nil, err
		}

		predicted := make([]string, len(result.Shortlist))
		for i, c := range result.Shortlist {
			predicted[i] = c.Item.URL
		}

		recall := RecallAtK(predicted, sample.URLs, k)
		total += recall
		report.PerQuery = append(report.PerQuery, QueryRecall{
			Query:     sample.Query,
			Truth:     len(sample.URLs),
			Predicted: len(predicted),
			Recall:    recall,
		})
	}

	if len(report.PerQuery) > 0 {
		report.MeanRecall = total / float64(len(report.PerQuery))
	}
	return report, nil
}

// RecallAtK is the fraction of relevant items that appear in the first k
// predictions.
func RecallAtK(predicted, truth []string, k int) float64 {
	if len(truth) == 0 {
		return 0
	}
	if k > len(predicted) {
		k = len(predicted)
	}

	truthSet := make(map[string]struct{}, len(truth))
	for _, url := range truth {
		truthSet[url] = struct{}{}
	}

	hits := 0
	seen := make(map[string]struct{}, k)
	for _, url := range predicted[:k] {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		if _, ok := truthSet[url]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(truthSet))
}
