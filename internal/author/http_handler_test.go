package author

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPHandler_Get(t *testing.T) {
	repo := NewMemoryRepo()
	require.NoError(t, repo.Create(context.Background(), &Author{Name: "Jane Doe", Themes: []string{"Loss"}}))

	svc := NewService(repo, nil, nil, nil, nil, Config{}, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/authors/{name}", NewHTTPHandler(svc).Get)

	t.Run("found with unnormalized name", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/authors/jane%20DOE", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data Author `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Jane Doe", body.Data.Name)
		assert.Equal(t, []string{"Loss"}, body.Data.Themes)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/authors/Nobody", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})
}
