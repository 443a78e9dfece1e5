package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMaxTokens caps Claude's response length for answer synthesis.
const anthropicMaxTokens = 1024

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropicClient creates a Claude-backed generation client.
func NewAnthropicClient(apiKey, model string, logger *slog.Logger) *AnthropicClient {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client: &c,
		model:  model,
		logger: logger,
	}
}

// Complete sends one message and returns the first text block of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic llm: calling API: %w", err)
	}

	var answer string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			answer = strings.TrimSpace(resp.Content[i].Text)
			break
		}
	}
	if answer == "" {
		return "", fmt.Errorf("anthropic llm: no text content in response")
	}

	c.logger.Debug("chat completion", "model", c.model, "answer_chars", len(answer))
	return answer, nil
}

// Model returns the generation model name.
func (c *AnthropicClient) Model() string {
	return c.model
}
