package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("k", 1000, 0, WithBaseURL(srv.URL))
}

func TestSearchVolumes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "thriller 2026", q.Get("q"))
		assert.Equal(t, "books", q.Get("printType"))
		assert.Equal(t, "newest", q.Get("orderBy"))
		assert.Equal(t, "40", q.Get("maxResults"))
		assert.Equal(t, "0", q.Get("startIndex"))
		assert.Equal(t, "k", q.Get("key"))
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"id":"x","volumeInfo":{
			"title":"T","authors":["a b"],"publishedDate":"2026-11",
			"industryIdentifiers":[{"type":"ISBN_10","identifier":"1"},{"type":"ISBN_13","identifier":"9780000000001"}],
			"imageLinks":{"thumbnail":"http://img"},"language":"en"}}]}`))
	})

	page, err := c.SearchVolumes(context.Background(), "thriller 2026", 0, 40)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	info := page.Items[0].VolumeInfo
	require.NotNil(t, info)
	assert.Equal(t, "9780000000001", info.ISBN13())
	assert.Equal(t, "http://img", info.ImageLinks.Thumbnail)
}

func TestSearchVolumesStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.SearchVolumes(context.Background(), "q", 0, 40)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestSearchVolumesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient("", 1000, 1, WithBaseURL(srv.URL))
	page, err := c.SearchVolumes(context.Background(), "q", 0, 40)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPopularVolumes(t *testing.T) {
	var sizes []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "bestseller", q.Get("q"))
		sizes = append(sizes, q.Get("maxResults"))
		n, _ := strconv.Atoi(q.Get("maxResults"))
		start, _ := strconv.Atoi(q.Get("startIndex"))
		page := VolumesPage{}
		for i := 0; i < n; i++ {
			page.Items = append(page.Items, Volume{ID: fmt.Sprint(start + i)})
		}
		_ = json.NewEncoder(w).Encode(page)
	})

	vols, err := c.PopularVolumes(context.Background(), 90)
	require.NoError(t, err)
	assert.Len(t, vols, 90)
	assert.Equal(t, []string{"40", "40", "10"}, sizes)
	assert.Equal(t, "89", vols[89].ID)
}

func TestPopularVolumesStopsOnEmptyPage(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"1"},{"id":"2"}]}`))
	})

	vols, err := c.PopularVolumes(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, vols, 2)
	assert.Equal(t, 2, calls)
}
