package generator

import (
	"context"
	"errors"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/shopthelook/scout/internal/scouterrors"
)

// ErrNoChoicesInResponse is returned when the chat API response contains no choices.
var ErrNoChoicesInResponse = errors.New("openai: no choices in response")

const defaultOpenAIModel = openaisdk.ChatModelGPT4oMini

// OpenAICompleter calls the OpenAI chat completions API via the official SDK.
type OpenAICompleter struct {
	sdk   openaisdk.Client
	model openaisdk.ChatModel
}

// Ensure OpenAICompleter implements Completer interface
var _ Completer = (*OpenAICompleter)(nil)

// OpenAIOption configures the OpenAICompleter.
type OpenAIOption func(*OpenAICompleter)

// WithOpenAIModel sets the chat model name. Empty uses the default.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *OpenAICompleter) {
		if model != "" {
			c.model = openaisdk.ChatModel(model)
		}
	}
}

// NewOpenAICompleter creates an OpenAI chat completer. Fails fast with a
// ConfigurationError when the API key is blank, before any network call.
func NewOpenAICompleter(apiKey string, opts ...OpenAIOption) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, scouterrors.NewConfigurationError("OPENAI_API_KEY", "")
	}

	completer := &OpenAICompleter{
		sdk:   openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model: defaultOpenAIModel,
	}

	for _, opt := range opts {
		opt(completer)
	}

	return completer, nil
}

// Complete returns the chat model's raw text response for the prompt.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Model: c.model,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesInResponse
	}

	return resp.Choices[0].Message.Content, nil
}
