package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopthelook/scout/internal/scouterrors"
)

// ErrNoURLInResponse is returned when the hosting service reports success but no URL.
var ErrNoURLInResponse = errors.New("publisher: no url in hosting response")

const defaultImgBBBaseURL = "https://api.imgbb.com/1/upload"

// ImgBBPublisher uploads images to the imgbb hosting API.
type ImgBBPublisher struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Ensure ImgBBPublisher implements Publisher interface
var _ Publisher = (*ImgBBPublisher)(nil)

// ImgBBOption configures the ImgBBPublisher.
type ImgBBOption func(*ImgBBPublisher)

// WithImgBBBaseURL overrides the upload endpoint (used in tests).
func WithImgBBBaseURL(baseURL string) ImgBBOption {
	return func(p *ImgBBPublisher) {
		p.baseURL = baseURL
	}
}

// WithImgBBTimeout sets the per-upload timeout.
func WithImgBBTimeout(d time.Duration) ImgBBOption {
	return func(p *ImgBBPublisher) {
		p.httpClient.Timeout = d
	}
}

// NewImgBBPublisher creates an imgbb publisher. Fails fast with a
// ConfigurationError when the API key is blank, before any network call.
func NewImgBBPublisher(apiKey string, opts ...ImgBBOption) (*ImgBBPublisher, error) {
	if apiKey == "" {
		return nil, scouterrors.NewConfigurationError("IMGBB_API_KEY", "")
	}

	pub := &ImgBBPublisher{
		apiKey:  apiKey,
		baseURL: defaultImgBBBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(pub)
	}

	return pub, nil
}

type imgbbResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Publish uploads the image and returns its public URL. Any non-success HTTP
// status is surfaced as an UploadError carrying status and body; repeated calls
// for the same image create distinct hosted resources.
func (p *ImgBBPublisher) Publish(ctx context.Context, imageID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("publish %s: image is empty", imageID)
	}

	form := url.Values{}
	form.Set("key", p.apiKey)
	form.Set("name", imageID)
	form.Set("image", base64.StdEncoding.EncodeToString(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image %s: %w", imageID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", scouterrors.NewUploadError(resp.StatusCode, string(body))
	}

	var out imgbbResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if out.Data.URL == "" {
		return "", ErrNoURLInResponse
	}

	return out.Data.URL, nil
}
