// Package products queries a visual product-search service with a public image
// URL and returns shoppable product results.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopthelook/scout/internal/models"
	"github.com/shopthelook/scout/internal/scouterrors"
)

var (
	// ErrInvalidImageURL is returned when the image URL is not a public http(s) URL.
	// The search service fetches the image itself, so a local path can never work.
	ErrInvalidImageURL = errors.New("products: image url must be a public http(s) url")
	// ErrInvalidMaxResults is returned when maxResults < 1.
	ErrInvalidMaxResults = errors.New("products: maxResults must be at least 1")
)

const defaultSerpBaseURL = "https://serpapi.com/search.json"

// SearchOptions carries the per-call search parameters.
type SearchOptions struct {
	MaxResults int
	Country    string
	Locale     string
	SearchType string
}

// SearchClient performs a visual product search for a public image URL.
type SearchClient interface {
	SearchByImage(ctx context.Context, imageURL string, opts SearchOptions) ([]models.ProductResult, error)
}

// SerpClient calls a SerpApi-style Google Lens endpoint.
type SerpClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Ensure SerpClient implements SearchClient interface
var _ SearchClient = (*SerpClient)(nil)

// SerpOption configures the SerpClient.
type SerpOption func(*SerpClient)

// WithSerpBaseURL overrides the search endpoint (used in tests).
func WithSerpBaseURL(baseURL string) SerpOption {
	return func(c *SerpClient) {
		c.baseURL = baseURL
	}
}

// WithSerpTimeout sets the per-search timeout.
func WithSerpTimeout(d time.Duration) SerpOption {
	return func(c *SerpClient) {
		c.httpClient.Timeout = d
	}
}

// NewSerpClient creates a product-search client. Fails fast with a
// ConfigurationError when the API key is blank, before any network call.
func NewSerpClient(apiKey string, opts ...SerpOption) (*SerpClient, error) {
	if apiKey == "" {
		return nil, scouterrors.NewConfigurationError("SERPAPI_API_KEY", "")
	}

	client := &SerpClient{
		apiKey:  apiKey,
		baseURL: defaultSerpBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// rawProduct mirrors one visual-match entry. Price arrives in varying shapes
// (object, plain string, absent, or inside the extensions list), so it is held
// raw and normalized afterwards.
type rawProduct struct {
	Title      string          `json:"title"`
	Source     string          `json:"source"`
	Price      json.RawMessage `json:"price,omitempty"`
	Extensions []any           `json:"extensions,omitempty"`
	Thumbnail  string          `json:"thumbnail,omitempty"`
	Link       string          `json:"link,omitempty"`
}

type searchResponse struct {
	VisualMatches []rawProduct `json:"visual_matches"`
}

// SearchByImage submits the public image URL and returns product results in
// the order the service returned them, truncated to opts.MaxResults. Non-2xx
// statuses and undecodable payloads surface as *scouterrors.SearchError.
func (c *SerpClient) SearchByImage(ctx context.Context, imageURL string, opts SearchOptions) ([]models.ProductResult, error) {
	if opts.MaxResults < 1 {
		return nil, ErrInvalidMaxResults
	}

	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidImageURL
	}

	q := url.Values{}
	q.Set("engine", "google_lens")
	q.Set("api_key", c.apiKey)
	q.Set("url", imageURL)
	if opts.Country != "" {
		q.Set("country", opts.Country)
	}
	if opts.Locale != "" {
		q.Set("hl", opts.Locale)
	}
	if opts.SearchType != "" {
		q.Set("type", opts.SearchType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call search service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, scouterrors.NewSearchError(resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, scouterrors.NewSearchError(resp.StatusCode, "undecodable search payload: "+err.Error())
	}

	matches := out.VisualMatches
	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}

	results := make([]models.ProductResult, len(matches))
	for i, m := range matches {
		results[i] = models.ProductResult{
			Title:     m.Title,
			Source:    m.Source,
			Price:     normalizePrice(m.Price, m.Extensions),
			Thumbnail: m.Thumbnail,
			Link:      m.Link,
		}
	}

	return results, nil
}
