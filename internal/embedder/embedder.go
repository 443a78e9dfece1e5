package embedder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deeptutor/ragdoctor/internal/config"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed returns a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns vector embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// Model returns the embedding model name.
	Model() string
}

// NewFromConfig builds the embedding client selected by the configuration.
// The openai provider requires OPENAI_API_KEY; the ollama provider only
// needs a reachable local daemon.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("embedder: OPENAI_API_KEY is not set")
		}
		return NewOpenAIEmbedder(
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.APIKey,
			cfg.Embedding.Model,
			cfg.Embedding.Dimension,
			logger,
		), nil
	case "ollama":
		return NewOllamaEmbedder(
			cfg.Ollama.BaseURL,
			cfg.Ollama.Model,
			cfg.Embedding.Dimension,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("embedder: unknown provider %q", cfg.Embedding.Provider)
	}
}
