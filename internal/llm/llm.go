package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deeptutor/ragdoctor/internal/config"
)

// Client generates text completions.
type Client interface {
	// Complete returns the model's reply to prompt. system may be empty.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Model returns the generation model name.
	Model() string
}

// NewFromConfig builds the generation client selected by the configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (Client, error) {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("llm: OPENAI_API_KEY is not set")
		}
		return NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.LLM.Model, logger), nil
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("llm: ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, logger), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}
}

// EstimateTokens gives a rough token count, blending a per-word and a
// per-character heuristic for English text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	return (int(float64(words)*1.3) + len(text)/4) / 2
}

// FitBudget truncates text at a word boundary so it stays within roughly
// budget tokens. Used to size retrieved context before prompting.
func FitBudget(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if EstimateTokens(text) <= budget {
		return text
	}
	maxChars := budget * 4
	if maxChars >= len(text) {
		return text
	}
	cut := text[:maxChars]
	if i := strings.LastIndex(cut, " "); i > maxChars/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
