package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	// MaxPageSize is the largest maxResults the volumes endpoint accepts.
	MaxPageSize = 40
	// PopularCap bounds how many popular volumes one call may collect.
	PopularCap  = 500
	popularTerm = "bestseller"
)

var ErrUnexpectedStatus = errors.New("googlebooks: unexpected status")

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(apiKey string, rps int, maxRetries int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchVolumes fetches one page of printed books matching q, newest first.
func (c *Client) SearchVolumes(ctx context.Context, q string, startIndex, maxResults int) (*VolumesPage, error) {
	if maxResults <= 0 || maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("printType", "books")
	params.Set("orderBy", "newest")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("startIndex", strconv.Itoa(startIndex))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var page VolumesPage
	if err := c.get(ctx, c.baseURL+"/volumes?"+params.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PopularVolumes collects up to max bestseller volumes, paging until the cap,
// an empty page, or a failed page. Volumes gathered before a failure are
// returned together with the error.
func (c *Client) PopularVolumes(ctx context.Context, max int) ([]Volume, error) {
	if max <= 0 || max > PopularCap {
		max = PopularCap
	}
	var out []Volume
	for len(out) < max {
		page, err := c.SearchVolumes(ctx, popularTerm, len(out), min(MaxPageSize, max-len(out)))
		if err != nil {
			return out, err
		}
		if len(page.Items) == 0 {
			break
		}
		out = append(out, page.Items...)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, u string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string, target interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode volumes: %w", err)
	}
	return false, nil
}
