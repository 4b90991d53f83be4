package explain

import (
	"fmt"
	"strings"

	"skillmatch/internal/domain"
)

const (
	// Prompt size stays bounded: at most this many shortlist items are shown
	// to the generator, with descriptions truncated.
	maxPromptItems   = 5
	maxDescriptionCh = 150

	bestMarker = "Best Overall:"
)

// FallbackText is the deterministic explanation used whenever no generator
// output is available.
const FallbackText = "Recommendations based on semantic similarity to query."

// buildPrompt renders the generator prompt for a query and shortlist.
func buildPrompt(query string, shortlist []domain.Candidate) string {
	var b strings.Builder

	b.WriteString("You are an HR assessment recommendation expert.\n\n")
	fmt.Fprintf(&b, "Job Query: %s\n\nTop Recommended Assessments:\n", query)

	n := len(shortlist)
	if n > maxPromptItems {
		n = maxPromptItems
	}
	for i := 0; i < n; i++ {
		item := shortlist[i].Item
		desc := item.Description
		if len(desc) > maxDescriptionCh {
			desc = desc[:maxDescriptionCh] + "..."
		}
		fmt.Fprintf(&b, "\n%d. %s (Type: %s)\n   Description: %s", i+1, item.Name, item.Category.Label(), desc)
	}

	b.WriteString(`

Task:
1. For each assessment, explain in 1-2 sentences why it's relevant for this role
2. Identify which ONE assessment is the best overall fit and explain why
3. If the role requires both technical and behavioral skills, ensure you recommend a balanced mix

Format your response as:
**Assessment 1: [Name]**
[Explanation]

**Best Overall: [Name]**
[Brief reasoning why this is the best fit]
`)

	return b.String()
}

// parseBestItem scans the generator output for the "Best Overall" line and
// resolves the named assessment against the shortlist. Any miss falls back to
// the top-scored item.
func parseBestItem(text string, shortlist []domain.Candidate) string {
	if len(shortlist) == 0 {
		return ""
	}
	fallback := shortlist[0].Item.ID

	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, bestMarker)
		if idx < 0 {
			continue
		}
		name := line[idx+len(bestMarker):]
		name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "*"))
		if name == "" {
			return fallback
		}
		for _, c := range shortlist {
			if strings.EqualFold(c.Item.Name, name) {
				return c.Item.ID
			}
		}
		return fallback
	}

	return fallback
}
