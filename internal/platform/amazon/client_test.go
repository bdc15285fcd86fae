package amazon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfeed/internal/normalize"
)

const itemJSON = `{"SearchResult":{"Items":[{
	"ASIN":"B0TEST",
	"DetailPageURL":"https://www.amazon.com/dp/B0TEST?tag=feed-20",
	"BrowseNodeInfo":{"BrowseNodes":[
		{"DisplayName":"Psychological Thrillers","ContextFreeName":"Psychological Thriller Fiction"},
		{"DisplayName":"Genre Fiction","ContextFreeName":"Literature & Fiction Genre Fiction"},
		{"DisplayName":"books_2026_q4","ContextFreeName":"Psychological Thrillers"}
	]},
	"Images":{"Primary":{"Large":{"URL":"https://m.media-amazon.com/images/I/x.jpg"}}},
	"ItemInfo":{
		"ContentInfo":{"PagesCount":{"DisplayValue":352},"PublicationDate":{"DisplayValue":"2026-11-04T00:00:01Z"}},
		"ByLineInfo":{"Manufacturer":{"DisplayValue":"Penguin"}}
	}
}]}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		AccessKey:  "AKID",
		SecretKey:  "SECRET",
		PartnerTag: "feed-20",
		Host:       strings.TrimPrefix(srv.URL, "http://"),
		Scheme:     "http",
	}, srv.Client())
	c.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestSearchByISBN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, searchTarget, r.Header.Get("X-Amz-Target"))
		assert.Equal(t, "amz-1.0", r.Header.Get("Content-Encoding"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256 Credential=AKID/20261001/us-east-1/ProductAdvertisingAPI/aws4_request"))
		assert.Equal(t, "20261001T120000Z", r.Header.Get("X-Amz-Date"))

		var req searchItemsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "9780000000001", req.Keywords)
		assert.Equal(t, "Books", req.SearchIndex)
		assert.Equal(t, "feed-20", req.PartnerTag)

		_, _ = w.Write([]byte(itemJSON))
	})

	offer, err := c.SearchByISBN(context.Background(), "9780000000001")
	require.NoError(t, err)
	require.NotNil(t, offer)

	assert.Equal(t, "https://www.amazon.com/dp/B0TEST?tag=feed-20", offer.AffiliateLink)
	assert.Equal(t, "https://m.media-amazon.com/images/I/x.jpg", offer.CoverImage)
	require.NotNil(t, offer.PageCount)
	assert.Equal(t, 352, *offer.PageCount)
	assert.Equal(t, "Penguin", offer.Publisher)
	assert.Equal(t, normalize.PrecisionDay, offer.PublishedDate.Precision)
	assert.Equal(t, "2026-11-04", offer.PublishedDate.String())
	assert.Equal(t, []string{"psychological thriller fiction", "psychological thrillers"}, offer.Keywords)
}

func TestSearchByISBNNoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"Errors":[{"Code":"NoResults","Message":"No results found"}]}`))
	})

	offer, err := c.SearchByISBN(context.Background(), "9780000000001")
	require.NoError(t, err)
	assert.Nil(t, offer)
}

func TestSearchByISBNThrottled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"Errors":[{"Code":"TooManyRequests"}]}`))
	})

	_, err := c.SearchByISBN(context.Background(), "9780000000001")
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "TooManyRequests")
}

func TestSearchByISBNNotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.SearchByISBN(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestValidKeyword(t *testing.T) {
	assert.True(t, validKeyword("mystery"))
	assert.True(t, validKeyword("hard_boiled"))
	assert.False(t, validKeyword("literature genre fiction"))
	assert.False(t, validKeyword("node_123"))
}

func TestParsePublicationDate(t *testing.T) {
	assert.Equal(t, "2026-03", parsePublicationDate("2026-03").String())
	assert.True(t, parsePublicationDate("March 2026").IsZero())
}
