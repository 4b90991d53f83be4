package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"skillmatch/internal/usecase"
)

var (
	evalDataset string
	evalTopK    int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure mean Recall@K on a labelled dataset",
	Long: `Run every query of a labelled dataset through the engine and report
per-query and mean Recall@K. The dataset is a CSV with columns "query" and
"url"; rows sharing a query form that query's ground truth set.

Example:
  skillmatch evaluate --dataset train.csv -k 10`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalDataset, "dataset", "", "labelled dataset CSV (required)")
	evaluateCmd.Flags().IntVarP(&evalTopK, "top-k", "k", 10, "K for Recall@K")
	evaluateCmd.MarkFlagRequired("dataset")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	samples, err := loadSamples(evalDataset)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("dataset %s contains no samples", evalDataset)
	}

	engine, err := buildEngine(nil)
	if err != nil {
		return err
	}

	report, err := usecase.NewEvaluator(engine).Evaluate(context.Background(), samples, evalTopK)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	for i, q := range report.PerQuery {
		query := q.Query
		if len(query) > 70 {
			query = query[:70] + "..."
		}
		fmt.Printf("%d. %s\n   truth=%d predicted=%d recall@%d=%.3f\n", i+1, query, q.Truth, q.Predicted, report.K, q.Recall)
	}
	fmt.Printf("\nMean Recall@%d over %d queries: %.4f\n", report.K, len(report.PerQuery), report.MeanRecall)
	return nil
}

// loadSamples reads (query, url) rows and groups them by query, preserving
// first-seen query order.
func loadSamples(path string) ([]usecase.QuerySample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	queryIdx, urlIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "query":
			queryIdx = i
		case "url", "assessment_url":
			urlIdx = i
		}
	}
	if queryIdx < 0 || urlIdx < 0 {
		return nil, fmt.Errorf("dataset %s must have query and url columns", path)
	}

	order := make([]string, 0)
	grouped := make(map[string][]string)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}
		if queryIdx >= len(record) || urlIdx >= len(record) {
			continue
		}

		query := strings.TrimSpace(record[queryIdx])
		url := strings.TrimSpace(record[urlIdx])
		if query == "" || url == "" {
			continue
		}
		if _, seen := grouped[query]; !seen {
			order = append(order, query)
		}
		grouped[query] = append(grouped[query], url)
	}

	samples := make([]usecase.QuerySample, 0, len(order))
	for _, query := range order {
		samples = append(samples, usecase.QuerySample{Query: query, URLs: grouped[query]})
	}
	return samples, nil
}
