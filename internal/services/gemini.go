package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	rateChan  chan struct{} // Token bucket
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, concurrentReqs int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

func (c *GeminiClient) Provider() string { return "gemini" }

func (c *GeminiClient) Model() string { return c.modelName }

// acquireRate blocks until a rate slot is available
func (c *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (c *GeminiClient) releaseRate() {
	c.rateChan <- struct{}{}
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.acquireRate(ctx); err != nil {
		return "", err
	}
	defer c.releaseRate()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

func (c *GeminiClient) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	it := c.client.ListModels(ctx)
	var out []models.ModelInfo
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gemini models: %w", err)
		}
		out = append(out, models.ModelInfo{
			Name:                       m.Name,
			DisplayName:                m.DisplayName,
			Description:                m.Description,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		})
	}
	return out, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
