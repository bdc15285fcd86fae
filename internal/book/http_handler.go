package book

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookfeed/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /v1/books
// @Summary List books
// @Tags books
// @Produce json
// @Param genre query string false "Genre filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Param cursor query string false "Continue after a previous page"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{Genre: query.Get("genre")}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	if c := query.Get("cursor"); c != "" {
		cur, err := DecodeCursor(c)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_CURSOR", "cursor is malformed", nil)
			return
		}
		if err := cur.Apply(&params); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_CURSOR", "cursor was issued for a different genre", nil)
			return
		}
	}

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if books == nil {
		books = []Book{}
	}

	meta := map[string]interface{}{
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	}
	if params.AfterISBN == "" {
		meta["page"] = page
	}
	if len(books) == pageSize {
		meta["next_cursor"] = EncodeCursor(CursorData{AfterISBN: books[len(books)-1].ISBN, Genre: params.Genre})
	}
	httpx.JSONSuccess(w, r, books, meta)
}

// GetByISBN handles GET /v1/books/{isbn}
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")
	if isbn == "" || strings.Contains(isbn, "/") {
		http.NotFound(w, r)
		return
	}

	book, err := h.service.GetByISBN(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "ISBN not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// Add handles POST /v1/books
// @Summary Add or override a book by ISBN
// @Description isbn and description are required; attributes are derived from the description.
// @Tags books
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in AddInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}

	book, err := h.service.Add(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// Delete handles DELETE /v1/books/{isbn}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")
	if isbn == "" {
		http.NotFound(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), isbn); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "ISBN not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONNoContent(w)
}
