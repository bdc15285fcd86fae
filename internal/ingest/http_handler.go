package ingest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bookfeed/internal/httpx"
)

// Job handlers run on a context detached from the client connection: a sweep
// started over HTTP runs to completion even if the caller goes away.
type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// UnreleasedBooks handles POST /internal/jobs/unreleased-books
// @Summary Sweep upcoming books of a genre
// @Tags internal
// @Produce json
// @Param genre query string true "Genre name"
// @Param X-Internal-Secret header string false "Internal secret"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /internal/jobs/unreleased-books [post]
func (h *HTTPHandler) UnreleasedBooks(w http.ResponseWriter, r *http.Request) {
	genre := r.URL.Query().Get("genre")
	if genre == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Missing genre parameter", nil)
		return
	}

	res, err := h.svc.SweepUnreleased(jobContext(r), genre)
	if err != nil {
		if errors.Is(err, ErrUnknownGenre) {
			httpx.JSONError(w, r, http.StatusBadRequest, "UNKNOWN_GENRE", err.Error(), nil)
			return
		}
		jobFailed(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// CustomBooks handles POST /internal/jobs/custom-books
// @Summary Sweep a free-text book search
// @Tags internal
// @Produce json
// @Param query query string true "Search query"
// @Param X-Internal-Secret header string false "Internal secret"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /internal/jobs/custom-books [post]
func (h *HTTPHandler) CustomBooks(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SweepQuery(jobContext(r), r.URL.Query().Get("query"))
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Missing query parameter", nil)
			return
		}
		jobFailed(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// OldBooks handles DELETE /internal/jobs/old-books
// @Summary Delete books past the retention window
// @Tags internal
// @Produce json
// @Param X-Internal-Secret header string false "Internal secret"
// @Success 200 {object} httpx.SuccessResponse
// @Router /internal/jobs/old-books [delete]
func (h *HTTPHandler) OldBooks(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.PruneExpired(jobContext(r))
	if err != nil {
		jobFailed(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]int{"deleted_books_count": n}, nil)
}

// PopularAuthors handles POST /internal/jobs/popular-authors
// @Summary Enrich authors of popular books
// @Tags internal
// @Produce json
// @Param X-Internal-Secret header string false "Internal secret"
// @Success 200 {object} httpx.SuccessResponse
// @Router /internal/jobs/popular-authors [post]
func (h *HTTPHandler) PopularAuthors(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.EnrichAuthors(jobContext(r))
	if err != nil {
		jobFailed(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// Runs handles GET /internal/runs
// @Summary List recent ingest runs
// @Tags internal
// @Produce json
// @Param limit query int false "Maximum runs (default 20, max 100)"
// @Success 200 {object} httpx.SuccessResponse
// @Router /internal/runs [get]
func (h *HTTPHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.svc.Runs(r.Context(), limit)
	if err != nil {
		httpx.LoggerFrom(r).Error().Err(err).Msg("list ingest runs failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if runs == nil {
		runs = []Run{}
	}
	httpx.JSONSuccess(w, r, runs, map[string]interface{}{"count": len(runs)})
}

func jobContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func jobFailed(w http.ResponseWriter, r *http.Request, err error) {
	httpx.LoggerFrom(r).Error().Err(err).Str("path", r.URL.Path).Msg("ingest job failed")
	httpx.JSONError(w, r, http.StatusInternalServerError, "INGEST_FAILED", "Ingest job failed", nil)
}
