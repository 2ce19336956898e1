package generator

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/shopthelook/scout/internal/scouterrors"
)

// ErrEmptyGenaiResponse is returned when the Gemini API response contains no text.
var ErrEmptyGenaiResponse = errors.New("googleai: empty response")

const defaultGoogleModel = "gemini-2.0-flash"

// GoogleCompleter calls the Gemini API via the Google Gen AI SDK.
type GoogleCompleter struct {
	client *genai.Client
	model  string
}

// Ensure GoogleCompleter implements Completer interface
var _ Completer = (*GoogleCompleter)(nil)

// GoogleOption configures the GoogleCompleter.
type GoogleOption func(*GoogleCompleter)

// WithGoogleModel sets the model name (e.g. gemini-2.0-flash). Empty uses the default.
func WithGoogleModel(model string) GoogleOption {
	return func(c *GoogleCompleter) {
		if model != "" {
			c.model = model
		}
	}
}

// NewGoogleCompleter creates a Gemini chat completer. Fails fast with a
// ConfigurationError when the API key is blank, before any network call.
func NewGoogleCompleter(ctx context.Context, apiKey string, opts ...GoogleOption) (*GoogleCompleter, error) {
	if apiKey == "" {
		return nil, scouterrors.NewConfigurationError("GOOGLE_API_KEY", "")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	completer := &GoogleCompleter{
		client: client,
		model:  defaultGoogleModel,
	}

	for _, opt := range opts {
		opt(completer)
	}

	return completer, nil
}

// Complete returns the model's raw text response for the prompt.
func (c *GoogleCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("googleai completion: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyGenaiResponse
	}

	return text, nil
}
