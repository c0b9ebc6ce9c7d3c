package services

import (
	"context"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

// ContentGenerator turns transcripts into markdown through the configured LLM.
type ContentGenerator struct {
	llm      LLM
	provider string
	limits   PromptLimits
	timeout  time.Duration
}

// NewContentGenerator accepts a nil llm; every call then fails with a ConfigError
// naming the key for provider.
func NewContentGenerator(llm LLM, provider string, limits PromptLimits, timeout time.Duration) *ContentGenerator {
	return &ContentGenerator{llm: llm, provider: provider, limits: limits, timeout: timeout}
}

func (g *ContentGenerator) Configured() bool { return g.llm != nil }

func (g *ContentGenerator) Limits() PromptLimits { return g.limits }

func (g *ContentGenerator) configError() error {
	return &ConfigError{Message: missingKeyMessage(g.provider)}
}

// CheckConfigured returns the ConfigError a call would fail with, or nil.
func (g *ContentGenerator) CheckConfigured() error {
	if g.llm == nil {
		return g.configError()
	}
	return nil
}

// Generate uses the enhanced template when meta is present and the standard
// one otherwise. The provider's text is returned verbatim.
func (g *ContentGenerator) Generate(ctx context.Context, ct models.ContentType, transcript string, meta *models.VideoMetadata) (string, error) {
	if g.llm == nil {
		return "", g.configError()
	}

	var prompt string
	var err error
	if meta != nil {
		prompt, err = BuildEnhancedPrompt(ct, transcript, meta, g.limits)
	} else {
		prompt, err = BuildStandardPrompt(ct, transcript, g.limits)
	}
	if err != nil {
		return "", err
	}
	return g.Complete(ctx, prompt)
}

// Complete sends a prepared prompt under the provider timeout.
func (g *ContentGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g.llm == nil {
		return "", g.configError()
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", &UpstreamError{
			Message: "LLM provider request failed",
			Details: err.Error(),
			Err:     err,
		}
	}
	return text, nil
}

func (g *ContentGenerator) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	if g.llm == nil {
		return nil, g.configError()
	}
	list, err := g.llm.ListModels(ctx)
	if err != nil {
		return nil, &UpstreamError{Message: "Failed to list models", Details: err.Error(), Err: err}
	}
	return list, nil
}

// Describe reports the active provider and model for diagnostics.
func (g *ContentGenerator) Describe() (provider, model string) {
	if g.llm == nil {
		return g.provider, ""
	}
	return g.llm.Provider(), g.llm.Model()
}
