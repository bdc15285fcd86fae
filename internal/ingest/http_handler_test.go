package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookfeed/internal/author"
	"bookfeed/internal/book"
	"bookfeed/internal/normalize"
)

func newTestMux(f *fixture) *http.ServeMux {
	h := NewHTTPHandler(f.svc)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /internal/jobs/unreleased-books", h.UnreleasedBooks)
	mux.HandleFunc("POST /internal/jobs/custom-books", h.CustomBooks)
	mux.HandleFunc("DELETE /internal/jobs/old-books", h.OldBooks)
	mux.HandleFunc("POST /internal/jobs/popular-authors", h.PopularAuthors)
	mux.HandleFunc("GET /internal/runs", h.Runs)
	return mux
}

func TestHTTPHandler_Jobs(t *testing.T) {
	t.Run("unreleased requires genre", func(t *testing.T) {
		mux := newTestMux(newFixture(t, Config{}, fixedNow))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/unreleased-books", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("unreleased unknown genre", func(t *testing.T) {
		mux := newTestMux(newFixture(t, Config{}, fixedNow))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/unreleased-books?genre=Westerns", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "UNKNOWN_GENRE")
	})

	t.Run("custom requires query", func(t *testing.T) {
		mux := newTestMux(newFixture(t, Config{}, fixedNow))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/custom-books?query=", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("old books reports the deleted count", func(t *testing.T) {
		f := newFixture(t, Config{}, fixedNow)
		old, _ := normalize.ParseDate("2001")
		require.NoError(t, f.books.Save(context.Background(), &book.Book{ISBN: "9780000000061", PublishedDate: old}))

		w := httptest.NewRecorder()
		newTestMux(f).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/internal/jobs/old-books", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Data["deleted_books_count"])
	})

	t.Run("popular authors and run listing", func(t *testing.T) {
		f := newFixture(t, Config{}, fixedNow)
		f.authors.On("EnrichPopular", mock.Anything).Return(author.Result{AuthorsUpserted: 2, Authors: []string{"A", "B"}}, nil)
		mux := newTestMux(f)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/popular-authors", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authors_upserted":2`)

		w = httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal/runs?limit=5", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []Run                  `json:"data"`
			Meta map[string]interface{} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, KindPopularAuthors, body.Data[0].Kind)
		assert.Equal(t, float64(1), body.Meta["count"])
	})

	t.Run("failure hides internal error text", func(t *testing.T) {
		f := newFixture(t, Config{}, fixedNow)
		f.authors.On("EnrichPopular", mock.Anything).
			Return(author.Result{}, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

		w := httptest.NewRecorder()
		newTestMux(f).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/popular-authors", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INGEST_FAILED")
		assert.NotContains(t, w.Body.String(), "10.0.0.3")
		assert.Equal(t, StatusFailed, f.onlyRun(t).Status)
	})

	t.Run("job outlives a disconnected client", func(t *testing.T) {
		f := newFixture(t, Config{}, fixedNow)
		f.authors.On("EnrichPopular", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		})).Return(author.Result{AuthorsUpserted: 1}, nil)

		reqCtx, cancel := context.WithCancel(context.Background())
		cancel()
		r := httptest.NewRequest(http.MethodPost, "/internal/jobs/popular-authors", nil).WithContext(reqCtx)
		w := httptest.NewRecorder()
		newTestMux(f).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, StatusCompleted, f.onlyRun(t).Status)
	})
}
