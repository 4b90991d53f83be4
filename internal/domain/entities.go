package domain

// Category is the topical class of an assessment.
type Category string

const (
	CategoryPersonality Category = "P"
	CategoryKnowledge   Category = "K"
	CategoryCognitive   Category = "C"
	CategoryGeneral     Category = "G"
)

// Label returns the human-readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryPersonality:
		return "Personality & Behavior"
	case CategoryKnowledge:
		return "Knowledge & Skills"
	case CategoryCognitive:
		return "Cognitive"
	default:
		return "General"
	}
}

// ParseCategory maps a catalogue test-type code to a Category.
func ParseCategory(code string) (Category, bool) {
	switch Category(code) {
	case CategoryPersonality, CategoryKnowledge, CategoryCognitive, CategoryGeneral:
		return Category(code), true
	}
	return "", false
}

// Assessment is one immutable catalogue entry. Its position in the loaded
// catalogue is the alignment key for the vector index.
type Assessment struct {
	ID          string
	Name        string
	URL         string
	Description string
	Category    Category
	Domain      string
	JobLevel    string
}

// Candidate pairs an assessment with its cosine similarity to a query.
// Position is the assessment's index in the catalogue.
type Candidate struct {
	Item     Assessment
	Position int
	Score    float64
}

// Explanation is the explainer's normalized output.
type Explanation struct {
	Text       string
	BestItemID string
}

// RecommendationResult is the terminal artifact of a recommend call.
type RecommendationResult struct {
	Query       string
	Shortlist   []Candidate
	Explanation string
	BestItemID  string
}
