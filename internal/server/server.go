package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"skillmatch/internal/domain"
	"skillmatch/internal/usecase"
)

const apiVersion = "1.0.0"

// Server is the thin HTTP surface over the engine facade. Handlers validate
// nothing the engine doesn't already validate; they only translate errors to
// status codes.
type Server struct {
	engine *usecase.Engine
	logger *slog.Logger
}

func New(engine *usecase.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, logger: logger}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/recommend", s.handleRecommend)

	return r
}

type recommendRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

type recommendationPayload struct {
	AssessmentName string  `json:"assessment_name"`
	URL            string  `json:"url"`
	RelevanceScore float64 `json:"relevance_score"`
	TestType       string  `json:"test_type"`
}

type recommendResponse struct {
	Query              string                  `json:"query"`
	Recommendations    []recommendationPayload `json:"recommendations"`
	TotalResults       int                     `json:"total_results"`
	Explanation        string                  `json:"explanation,omitempty"`
	BestRecommendation string                  `json:"best_recommendation,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "skillmatch assessment recommendation API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"health":    "/health - Check API status",
			"recommend": "/recommend - Get assessment recommendations (POST)",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   apiVersion,
		"catalogue": s.engine.CatalogueSize(),
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	topK := 10
	if req.TopK != nil {
		topK = *req.TopK
	}

	result, err := s.engine.Recommend(r.Context(), req.Query, topK)
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload := recommendResponse{
		Query:              result.Query,
		Recommendations:    make([]recommendationPayload, len(result.Shortlist)),
		TotalResults:       len(result.Shortlist),
		Explanation:        result.Explanation,
		BestRecommendation: result.BestItemID,
	}
	for i, c := range result.Shortlist {
		payload.Recommendations[i] = recommendationPayload{
			AssessmentName: c.Item.Name,
			URL:            c.Item.URL,
			RelevanceScore: c.Score,
			TestType:       c.Item.Category.Label(),
		}
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEncoderUnavailable):
		s.logger.Error("encoder unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "encoder unavailable"})
	default:
		s.logger.Error("recommendation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
