package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/euii-ii/ContentCapsule/internal/config"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

// LLM is a text-in, text-out completion provider.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
	ListModels(ctx context.Context) ([]models.ModelInfo, error)
}

// NewLLM builds the provider selected by LLM_PROVIDER. It returns a nil LLM and
// no error when the provider has no API key, so callers can report a
// configuration error per request instead of failing at startup.
func NewLLM(ctx context.Context, cfg *config.Config) (LLM, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
}

// missingKeyMessage names the environment variable the configured provider needs.
func missingKeyMessage(provider string) string {
	if strings.EqualFold(provider, "openai") {
		return "OPENAI_API_KEY not found in environment variables"
	}
	return "GEMINI_API_KEY not found in environment variables"
}
