package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	recommendQuery string
	recommendTopK  int
	recommendJSON  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend assessments for a job query",
	Long: `Rank the catalogue against a free-text job query and print the
diversity-balanced shortlist.

Examples:
  skillmatch recommend -q "Java developer who collaborates well with teams"
  skillmatch recommend -q "entry-level sales professional" --top-k 5 --json`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVarP(&recommendQuery, "query", "q", "", "job query (required)")
	recommendCmd.Flags().IntVarP(&recommendTopK, "top-k", "k", 0, "number of recommendations (default from config)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output as JSON")
	recommendCmd.MarkFlagRequired("query")
}

type recommendOutput struct {
	Query              string               `json:"query"`
	Recommendations    []recommendationItem `json:"recommendations"`
	Explanation        string               `json:"explanation,omitempty"`
	BestRecommendation string               `json:"best_recommendation,omitempty"`
}

type recommendationItem struct {
	Name     string  `json:"assessment_name"`
	URL      string  `json:"url"`
	TestType string  `json:"test_type"`
	Domain   string  `json:"domain,omitempty"`
	Score    float64 `json:"similarity_score"`
}

func runRecommend(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine(nil)
	if err != nil {
		return err
	}

	topK := cfg.Engine.TopK
	if recommendTopK > 0 {
		topK = recommendTopK
	}

	result, err := engine.Recommend(context.Background(), recommendQuery, topK)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	if recommendJSON {
		out := recommendOutput{
			Query:              result.Query,
			Explanation:        result.Explanation,
			BestRecommendation: result.BestItemID,
		}
		for _, c := range result.Shortlist {
			out.Recommendations = append(out.Recommendations, recommendationItem{
				Name:     c.Item.Name,
				URL:      c.Item.URL,
				TestType: c.Item.Category.Label(),
				Domain:   c.Item.Domain,
				Score:    c.Score,
			})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Top %d recommendations for: %s\n", len(result.Shortlist), result.Query)
	for i, c := range result.Shortlist {
		fmt.Printf("\n%d. %s\n", i+1, c.Item.Name)
		fmt.Printf("   Type: %s | Domain: %s\n", c.Item.Category.Label(), c.Item.Domain)
		fmt.Printf("   Score: %.3f\n", c.Score)
		fmt.Printf("   URL: %s\n", c.Item.URL)
	}

	if result.Explanation != "" {
		fmt.Printf("\nExplanation:\n%s\n", result.Explanation)
	}

	return nil
}
