package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model, maxTokens: int32(cfg.MaxTokens)}, nil
}

func (client *GeminiClient) Provider() string {
	return ProviderGemini
}

func (client *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := client.client.Models.GenerateContent(ctx, client.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: client.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %v", ErrUnavailable, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: gemini returned no text", ErrUnavailable)
	}
	return text, nil
}
