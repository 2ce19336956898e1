package embeddings

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	// ErrEmptyText is returned when EmbedText is called with blank input.
	ErrEmptyText = errors.New("embeddings: input text is empty")
	// ErrEmptyImage is returned when EmbedImage is called with no bytes.
	ErrEmptyImage = errors.New("embeddings: image is empty")
	// ErrNoEmbeddingInResponse is returned when the service response contains no vector.
	ErrNoEmbeddingInResponse = errors.New("embeddings: no embedding in response")
)

const defaultTimeout = 2 * time.Minute

// ClipClient is an HTTP client for the CLIP inference sidecar. The sidecar
// embeds both images and text into the same vector space.
type ClipClient struct {
	baseURL    string
	httpClient *http.Client

	// model is written by embed calls and read by Model; one client is shared
	// across concurrent requests, so access is guarded.
	mu    sync.RWMutex
	model string
}

// Ensure ClipClient implements Client interface
var _ Client = (*ClipClient)(nil)

// ClipOption configures the ClipClient.
type ClipOption func(*ClipClient)

// WithTimeout sets the per-request timeout. Embedding a batch of catalog
// images can take a while on CPU, so the default is generous.
func WithTimeout(d time.Duration) ClipOption {
	return func(c *ClipClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) ClipOption {
	return func(c *ClipClient) {
		c.httpClient = hc
	}
}

// NewClipClient creates a client for the CLIP service at baseURL.
func NewClipClient(baseURL string, opts ...ClipOption) *ClipClient {
	client := &ClipClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type embedRequest struct {
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type embedResponse struct {
	Model     string    `json:"model"`
	Embedding []float32 `json:"embedding"`
}

// EmbedText generates an embedding vector for the given text.
func (c *ClipClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	return c.embed(ctx, "/embed/text", embedRequest{Text: text})
}

// EmbedImage generates an embedding vector for the given image bytes.
func (c *ClipClient) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	return c.embed(ctx, "/embed/image", embedRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	})
}

// Model returns the model identity reported by the service on the most recent
// call, or "" before any successful call. Callers that need the identity up
// front should embed something first (the index builder does).
func (c *ClipClient) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.model
}

func (c *ClipClient) embed(ctx context.Context, path string, reqBody embedRequest) ([]float32, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return nil, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	if len(out.Embedding) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	if out.Model != "" {
		c.mu.Lock()
		c.model = out.Model
		c.mu.Unlock()
	}

	return out.Embedding, nil
}
