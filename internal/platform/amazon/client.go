package amazon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"golang.org/x/time/rate"
)

const (
	service       = "ProductAdvertisingAPI"
	searchPath    = "/paapi5/searchitems"
	searchTarget  = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"
	defaultHost   = "webservices.amazon.com"
	defaultRegion = "us-east-1"
	marketplace   = "www.amazon.com"
)

var (
	ErrUnexpectedStatus = errors.New("amazon: unexpected status")
	ErrNotConfigured    = errors.New("amazon: credentials not configured")
)

var searchResources = []string{
	"ItemInfo.Title",
	"ItemInfo.ByLineInfo",
	"ItemInfo.ContentInfo",
	"ItemInfo.ProductInfo",
	"Images.Primary.Large",
	"BrowseNodeInfo.BrowseNodes",
	"Offers.Listings.Price",
}

type Config struct {
	AccessKey  string
	SecretKey  string
	PartnerTag string
	Host       string
	Region     string
	// Scheme is "https" unless overridden in tests.
	Scheme string
}

// Client searches the Product Advertising API 5 catalog.
type Client struct {
	cfg        Config
	httpClient *http.Client
	signer     *v4.Signer
	limiter    *rate.Limiter
	now        func() time.Time
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		signer:     v4.NewSigner(),
		// PA-API allows one request per second for new associates.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		now:     time.Now,
	}
}

type searchItemsRequest struct {
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Keywords    string   `json:"Keywords"`
	SearchIndex string   `json:"SearchIndex"`
	Resources   []string `json:"Resources"`
	Marketplace string   `json:"Marketplace"`
	ItemPage    int      `json:"ItemPage"`
}

// SearchByISBN returns the first catalog item for isbn. A search with no
// results yields (nil, nil).
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (*Offer, error) {
	if c.cfg.AccessKey == "" || c.cfg.SecretKey == "" || c.cfg.PartnerTag == "" {
		return nil, ErrNotConfigured
	}
	body, err := json.Marshal(searchItemsRequest{
		PartnerTag:  c.cfg.PartnerTag,
		PartnerType: "Associates",
		Keywords:    isbn,
		SearchIndex: "Books",
		Resources:   searchResources,
		Marketplace: marketplace,
		ItemPage:    1,
	})
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Scheme+"://"+c.cfg.Host+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", searchTarget)
	req.Header.Set("Accept", "application/json")

	sum := sha256.Sum256(body)
	creds := aws.Credentials{AccessKeyID: c.cfg.AccessKey, SecretAccessKey: c.cfg.SecretKey}
	if err := c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]), service, c.cfg.Region, c.now()); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out searchItemsResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if out.noResults() {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, out.errorCodes())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode search items: %w", decodeErr)
	}
	if out.SearchResult == nil || len(out.SearchResult.Items) == 0 {
		return nil, nil
	}
	offer := extractOffer(out.SearchResult.Items[0])
	return &offer, nil
}
