package balancer

import (
	"strings"

	"skillmatch/internal/domain"
)

// Topic is a signal family a query can imply.
type Topic string

const (
	TopicBehavioral Topic = "behavioral"
	TopicTechnical  Topic = "technical"
	TopicCognitive  Topic = "cognitive"
)

// DefaultVocabulary maps each topic to the keywords that flag it. Matching is
// substring containment on the lowercased query, so "teams" flags "team".
var DefaultVocabulary = map[Topic][]string{
	TopicBehavioral: {
		"collaborate", "team", "behavior", "personality", "communication",
		"leadership", "soft skill", "stakeholder",
	},
	TopicTechnical: {
		"java", "python", "sql", "javascript", "coding", "programming",
		"technical", "developer", "engineer", "analyst", "data",
	},
	TopicCognitive: {
		"cognitive", "reasoning", "analytical", "thinking", "aptitude",
	},
}

// CategoryBalancer interleaves personality and knowledge/cognitive candidates
// when the query implies both soft-skill and domain-skill coverage. Pure
// similarity ranking tends to cluster around the dominant signal ("Java"
// drowns out "collaborate"); interleaving guarantees both families survive
// the later truncation.
type CategoryBalancer struct {
	vocabulary map[Topic][]string
}

func New() *CategoryBalancer {
	return &CategoryBalancer{vocabulary: DefaultVocabulary}
}

// NewWithVocabulary builds a balancer over a custom keyword table.
func NewWithVocabulary(vocabulary map[Topic][]string) *CategoryBalancer {
	return &CategoryBalancer{vocabulary: vocabulary}
}

// Classify reports which topics the query flags.
func (b *CategoryBalancer) Classify(query string) map[Topic]bool {
	lower := strings.ToLower(query)
	flags := make(map[Topic]bool, len(b.vocabulary))
	for topic, words := range b.vocabulary {
		for _, word := range words {
			if strings.Contains(lower, word) {
				flags[topic] = true
				break
			}
		}
	}
	return flags
}

// Balance reorders the candidate pool. Length-preserving: every input
// candidate appears exactly once in the output.
//
// Rebalancing fires only for behavioral+technical or behavioral+cognitive
// queries. Technical+cognitive alone does not trigger; that asymmetry is the
// shipped behavior and is kept as-is.
func (b *CategoryBalancer) Balance(candidates []domain.Candidate, query string) []domain.Candidate {
	flags := b.Classify(query)
	triggered := flags[TopicBehavioral] && (flags[TopicTechnical] || flags[TopicCognitive])
	if !triggered || len(candidates) == 0 {
		return candidates
	}

	// Partitions keep incoming (similarity-descending) order.
	var personality, skills []int
	for i, c := range candidates {
		switch c.Item.Category {
		case domain.CategoryPersonality:
			personality = append(personality, i)
		case domain.CategoryKnowledge, domain.CategoryCognitive:
			skills = append(skills, i)
		}
	}

	half := len(candidates) / 2
	if len(personality) > half {
		personality = personality[:half]
	}
	if len(skills) > half {
		skills = skills[:half]
	}

	balanced := make([]domain.Candidate, 0, len(candidates))
	visited := make(map[int]bool, len(candidates))
	take := func(poolIdx int) {
		balanced = append(balanced, candidates[poolIdx])
		visited[poolIdx] = true
	}

	for _, i := range personality {
		take(i)
	}
	for _, i := range skills {
		take(i)
	}

	// Fill remaining slots by original score order; nothing is dropped here.
	for i := range candidates {
		if !visited[i] {
			take(i)
		}
	}

	return balanced
}
