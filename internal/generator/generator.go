// Package generator turns free-form outfit text into an ordered list of
// clothing items by asking a chat model for a JSON array of strings.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopthelook/scout/internal/models"
)

const defaultPrompt = `You are a fashion assistant. Given the outfit description below, ` +
	`list the individual clothing items it mentions or implies. ` +
	`Respond with ONLY a JSON array of short item strings, most important first. ` +
	`No prose, no markdown fences.

Outfit description: %s`

// Completer produces one chat completion for a prompt.
// Implemented by provider-specific clients (OpenAI, Google Gemini) and by test mocks.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service generates clothing-item lists from free-form text.
type Service struct {
	completer Completer
	prompt    string
	logger    *slog.Logger
}

// ServiceParams configures Service. Prompt and Logger may be zero (defaults used).
type ServiceParams struct {
	Completer Completer
	Prompt    string
	Logger    *slog.Logger
}

// NewService creates a generator Service.
func NewService(p ServiceParams) *Service {
	prompt := p.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		completer: p.Completer,
		prompt:    prompt,
		logger:    logger,
	}
}

// GenerateItems sends the text to the chat model and parses the response into
// an ordered list of clothing items. The response is decoded strictly first;
// when that fails, the first bracketed array substring is decoded instead. When
// both fail, a ParseError naming the raw response is returned, never a silent
// empty list.
func (s *Service) GenerateItems(ctx context.Context, text string) ([]models.ClothingItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("generate items: input text is empty")
	}

	raw, err := s.completer.Complete(ctx, fmt.Sprintf(s.prompt, text))
	if err != nil {
		s.logger.Error("generate items: completion failed", "error", err)

		return nil, fmt.Errorf("generate items: %w", err)
	}

	items, err := parseItems(raw)
	if err != nil {
		s.logger.Error("generate items: unparseable response", "error", err)

		return nil, err
	}

	s.logger.Debug("generated clothing items", "count", len(items))

	return items, nil
}
