package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client, model: model}
}

func (c *OpenAIClient) Provider() string { return "openai" }

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list openai models: %w", err)
	}
	out := make([]models.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		out = append(out, models.ModelInfo{Name: m.ID, DisplayName: m.ID})
	}
	return out, nil
}
