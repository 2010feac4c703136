// Package llm talks to the chat-completion providers behind the health
// assistant.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderDisabled  = "disabled"

	DefaultMaxTokens = 500
)

// ErrUnavailable is returned when no answer could be produced. Callers show
// a generic retry message for it.
var ErrUnavailable = errors.New("chat model unavailable")

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Provider() string
}

type Config struct {
	Provider        string
	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicURL    string
	GeminiAPIKey    string
	GeminiModel     string
	GeminiURL       string
	MaxTokens       int
}

// New builds the completer for cfg.Provider. Unknown providers are an error;
// a provider without credentials falls back to Disabled.
func New(ctx context.Context, cfg Config) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderAnthropic, "":
		if cfg.AnthropicAPIKey == "" {
			return Disabled{}, nil
		}
		return NewAnthropicClient(AnthropicConfig{
			APIKey:    cfg.AnthropicAPIKey,
			BaseURL:   cfg.AnthropicURL,
			Model:     cfg.AnthropicModel,
			MaxTokens: cfg.MaxTokens,
		}), nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Disabled{}, nil
		}
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			BaseURL:   cfg.GeminiURL,
			Model:     cfg.GeminiModel,
			MaxTokens: cfg.MaxTokens,
		})
	case ProviderDisabled:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// Disabled never answers.
type Disabled struct{}

func (Disabled) Complete(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) Provider() string {
	return ProviderDisabled
}
