package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"ProposalReviewer/internal/ports"
	"ProposalReviewer/internal/usecase"
)

// Server exposes the review pipeline and its collaborators over HTTP.
type Server struct {
	reviews   *usecase.ReviewService
	generator *usecase.Generator
	rubrics   ports.RubricRepository
	batches   ports.BatchRepository
	logger    *slog.Logger
}

// Deps wires the server's collaborators; rubric and batch repositories
// may be nil when persistence is disabled.
type Deps struct {
	Reviews   *usecase.ReviewService
	Generator *usecase.Generator
	Rubrics   ports.RubricRepository
	Batches   ports.BatchRepository
	Logger    *slog.Logger
}

// New builds the server.
func New(deps Deps) *Server {
	return &Server{
		reviews:   deps.Reviews,
		generator: deps.Generator,
		rubrics:   deps.Rubrics,
		batches:   deps.Batches,
		logger:    deps.Logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/rubrics", s.handleCreateRubric)
	mux.HandleFunc("GET /api/rubrics", s.handleListRubrics)
	mux.HandleFunc("GET /api/rubrics/{id}", s.handleGetRubric)
	mux.HandleFunc("DELETE /api/rubrics/{id}", s.handleDeleteRubric)
	mux.HandleFunc("POST /api/reviews", s.handleReviewBatch)
	mux.HandleFunc("GET /api/batches/{id}", s.handleGetBatch)
	mux.HandleFunc("GET /api/batches/{id}/export.csv", s.handleExportBatch)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)

	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if s.logger != nil {
			s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
