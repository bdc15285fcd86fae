package knowledgegraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://kgsearch.googleapis.com/v1"

var ErrUnexpectedStatus = errors.New("knowledgegraph: unexpected status")

// Person is the subset of an entity search result used for author records.
type Person struct {
	Name      string
	Biography string
	ImageURL  string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

func NewClient(apiKey string, rps int, httpClient *http.Client, baseURL string) *Client {
	if rps <= 0 {
		rps = 1
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
	}
}

type searchResponse struct {
	ItemListElement []struct {
		Result *struct {
			Name                string `json:"name"`
			Description         string `json:"description"`
			DetailedDescription struct {
				ArticleBody string `json:"articleBody"`
			} `json:"detailedDescription"`
			Image struct {
				ContentURL string `json:"contentUrl"`
			} `json:"image"`
		} `json:"result"`
	} `json:"itemListElement"`
}

// LookupPerson returns the top Person match for name, or (nil, nil) when the
// graph has no result.
func (c *Client) LookupPerson(ctx context.Context, name string) (*Person, error) {
	params := url.Values{}
	params.Set("query", name)
	params.Set("key", c.apiKey)
	params.Set("limit", "1")
	params.Set("types", "Person")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/entities:search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode entity search: %w", err)
	}
	if len(out.ItemListElement) == 0 || out.ItemListElement[0].Result == nil {
		return nil, nil
	}

	r := out.ItemListElement[0].Result
	p := &Person{
		Name:      r.Name,
		Biography: r.DetailedDescription.ArticleBody,
		ImageURL:  r.Image.ContentURL,
	}
	if p.Name == "" {
		p.Name = name
	}
	if p.Biography == "" {
		p.Biography = r.Description
	}
	if strings.HasPrefix(p.ImageURL, "http:") {
		p.ImageURL = "https:" + strings.TrimPrefix(p.ImageURL, "http:")
	}
	return p, nil
}
