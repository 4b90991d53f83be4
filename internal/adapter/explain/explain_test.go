package explain

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillmatch/internal/domain"
)

func shortlist(names ...string) []domain.Candidate {
	out := make([]domain.Candidate, len(names))
	for i, name := range names {
		out[i] = domain.Candidate{
			Item:  domain.Assessment{ID: fmt.Sprintf("id-%d", i), Name: name, Description: strings.Repeat("x", 200)},
			Score: 1.0 - float64(i)*0.1,
		}
	}
	return out
}

func TestBuildPrompt_CapsItemsAndDescriptions(t *testing.T) {
	list := shortlist("A", "B", "C", "D", "E", "F", "G")
	prompt := buildPrompt("Java developer", list)

	if !strings.Contains(prompt, "Job Query: Java developer") {
		t.Error("prompt missing query")
	}
	if !strings.Contains(prompt, "5. E") {
		t.Error("prompt should include the fifth item")
	}
	if strings.Contains(prompt, "6. F") {
		t.Error("prompt must cap at five items")
	}
	if strings.Contains(prompt, strings.Repeat("x", 151)) {
		t.Error("descriptions must be truncated")
	}
}

func TestParseBestItem(t *testing.T) {
	list := shortlist("Java Programming", "Teamwork Styles")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled pick", "...\n**Best Overall: Teamwork Styles**\nreasoning", "id-1"},
		{"case insensitive", "Best Overall: JAVA PROGRAMMING", "id-0"},
		{"unknown name falls back", "Best Overall: Something Else", "id-0"},
		{"no marker falls back", "no structured pick here", "id-0"},
		{"empty name falls back", "Best Overall:   ", "id-0"},
	}

	for _, tt := range tests {
		if got := parseBestItem(tt.text, list); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestStaticExplainer(t *testing.T) {
	e := NewStaticExplainer()

	result, err := e.Explain(context.Background(), "any query here", shortlist("A", "B"))
	if err != nil {
		t.Fatalf("static explainer must never fail: %v", err)
	}
	if result.Text != FallbackText {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.BestItemID != "id-0" {
		t.Errorf("expected top-scored item, got %q", result.BestItemID)
	}
}

func newTestGemini(t *testing.T, baseURL string) *GeminiExplainer {
	t.Helper()
	t.Setenv("TEST_GEMINI_KEY", "test-key")
	e, err := NewGeminiExplainer("TEST_GEMINI_KEY", "gemini-2.5-flash", baseURL, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestGeminiExplainer_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"analysis\n**Best Overall: Teamwork Styles**\ndone"}]}}]}`)
	}))
	defer srv.Close()

	e := newTestGemini(t, srv.URL)
	result, err := e.Explain(context.Background(), "collaborative Java role", shortlist("Java Programming", "Teamwork Styles"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Text, "analysis") {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.BestItemID != "id-1" {
		t.Errorf("expected parsed best pick id-1, got %q", result.BestItemID)
	}
}

func TestGeminiExplainer_ErrorSurfacesForDegradation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := newTestGemini(t, srv.URL)
	if _, err := e.Explain(context.Background(), "any query", shortlist("A")); err == nil {
		t.Fatal("expected error from failing generator")
	}
}

func TestBreakerExplainer_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker := NewBreakerExplainer(newTestGemini(t, srv.URL), 2)

	for i := 0; i < 5; i++ {
		if _, err := breaker.Explain(context.Background(), "any query", shortlist("A")); err == nil {
			t.Fatal("expected error")
		}
	}

	// After the trip threshold the generator stops being called.
	if calls > 2 {
		t.Errorf("expected breaker to stop calls after 2 failures, generator saw %d", calls)
	}
}
