// internal/api/handler.go
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"commit-evidence/internal/model"
	"commit-evidence/internal/report"
	"commit-evidence/internal/store"
)

// Handler is the container for API dependencies.
type Handler struct {
	db     store.Querier
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db store.Querier, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:     db,
		logger: logger,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)
	r.Route("/v1/repos/{owner}/{name}", func(r chi.Router) {
		r.Get("/", h.getRepository)
		r.Get("/commits", h.getCommits)
		r.Get("/commits.csv", h.getCommitsCSV)
		r.Get("/stats/top-committers", h.getTopCommitters)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getRepository reports how much evidence is stored for a repository.
// GET /v1/repos/{owner}/{name}
func (h *Handler) getRepository(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// getCommits handles the request to retrieve stored commits for a repository.
// GET /v1/repos/{owner}/{name}/commits?author=
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	commits, ok := h.loadCommits(w, r)
	if !ok {
		return
	}
	if commits == nil {
		commits = []store.EvidenceCommit{}
	}
	respondWithJSON(w, http.StatusOK, commits)
}

// getCommitsCSV exports stored commits in the evidence CSV layout.
// GET /v1/repos/{owner}/{name}/commits.csv?author=
func (h *Handler) getCommitsCSV(w http.ResponseWriter, r *http.Request) {
	stored, ok := h.loadCommits(w, r)
	if !ok {
		return
	}
	commits := make([]model.Commit, len(stored))
	for i, e := range stored {
		commits[i] = e.ToModel()
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, commits, true); err != nil {
		h.logger.Error("Failed to write CSV response", "error", err)
	}
}

// getTopCommitters handles the request for the most active committers.
// GET /v1/repos/{owner}/{name}/stats/top-committers?limit=N
func (h *Handler) getTopCommitters(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "10"
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be an integer between 1 and 100.")
		return
	}

	summary, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	committers, err := h.db.GetTopNCommitters(r.Context(), store.GetTopNCommittersParams{
		Owner:      summary.Owner,
		Repository: summary.Repository,
		Limit:      int32(limit),
	})
	if err != nil {
		h.logger.Error("Failed to get top committers", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if committers == nil {
		committers = []store.GetTopNCommittersRow{}
	}

	respondWithJSON(w, http.StatusOK, committers)
}

func (h *Handler) lookupRepository(w http.ResponseWriter, r *http.Request) (store.RepositorySummary, bool) {
	summary, err := h.db.GetRepositorySummary(r.Context(), store.GetRepositorySummaryParams{
		Owner:      chi.URLParam(r, "owner"),
		Repository: chi.URLParam(r, "name"),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Repository not found")
			return store.RepositorySummary{}, false
		}
		h.logger.Error("Failed to get repository", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return store.RepositorySummary{}, false
	}
	return summary, true
}

func (h *Handler) loadCommits(w http.ResponseWriter, r *http.Request) ([]store.EvidenceCommit, bool) {
	summary, ok := h.lookupRepository(w, r)
	if !ok {
		return nil, false
	}

	commits, err := h.db.GetCommitsByRepository(r.Context(), store.GetCommitsByRepositoryParams{
		Owner:      summary.Owner,
		Repository: summary.Repository,
		Author:     r.URL.Query().Get("author"),
	})
	if err != nil {
		h.logger.Error("Failed to get commits", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return commits, true
}
