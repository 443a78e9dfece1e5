package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultProvider is the pipeline used when RAG_PROVIDER is not set.
	DefaultProvider = "raganything"

	// DefaultEmbeddingDimension matches text-embedding-3-small truncated output.
	DefaultEmbeddingDimension = 768
)

// envFiles are loaded before viper binds the environment. godotenv never
// overrides variables that are already set in the process environment.
var envFiles = []string{"DeepTutor.env", ".env"}

// Config holds all configuration for ragdoctor.
type Config struct {
	Provider  string          `mapstructure:"provider"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Neo4j     Neo4jConfig     `mapstructure:"neo4j"`
	Data      DataConfig      `mapstructure:"data"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// OpenAIConfig holds credentials for the OpenAI-compatible API endpoint.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// String returns a safe representation of OpenAIConfig with the API key masked.
func (c OpenAIConfig) String() string {
	return fmt.Sprintf("OpenAIConfig{APIKey:%s, BaseURL:%s}", MaskKey(c.APIKey), c.BaseURL)
}

// AnthropicConfig holds Anthropic API settings for the anthropic LLM provider.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// String returns a safe representation of AnthropicConfig with the API key masked.
func (c AnthropicConfig) String() string {
	return fmt.Sprintf("AnthropicConfig{APIKey:%s, Model:%s}", MaskKey(c.APIKey), c.Model)
}

// LLMConfig selects the text-generation provider and model.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

// EmbeddingConfig selects the embedding provider and model.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

// OllamaConfig holds settings for the local Ollama embedding fallback.
type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// QdrantConfig holds the vector store connection used by the raganything engine.
type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	GRPCPort   int    `mapstructure:"grpc_port"`
	Collection string `mapstructure:"collection"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

// Neo4jConfig holds the graph store connection used by the lightrag engine.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DataConfig holds on-disk layout settings.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// KnowledgeBaseRoot returns the directory scanned for knowledge bases.
func (d DataConfig) KnowledgeBaseRoot() string {
	return d.Dir + "/knowledge_bases"
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MaskKey renders a secret for display. Values longer than 12 characters show
// the first 8 and last 4 characters; shorter values collapse to a placeholder.
func MaskKey(key string) string {
	if len(key) > 12 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	return "***"
}

// Load reads env files, environment variables and an optional config file.
func Load() (*Config, error) {
	// Best effort: a missing env file is not an error.
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()

	v.SetDefault("provider", DefaultProvider)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")

	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")

	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimension", DefaultEmbeddingDimension)

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "nomic-embed-text")

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.grpc_port", 6334)
	v.SetDefault("qdrant.collection", "deeptutor_passages")
	v.SetDefault("qdrant.use_tls", false)

	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")

	v.SetDefault("data.dir", "data")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file
	v.SetConfigName("ragdoctor")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("RAGDOCTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The variables the DeepTutor deployment already uses.
	_ = v.BindEnv("provider", "RAG_PROVIDER")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("llm.model", "LLM_MODEL")
	_ = v.BindEnv("embedding.model", "EMBEDDING_MODEL")
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("neo4j.uri", "NEO4J_URI")
	_ = v.BindEnv("neo4j.username", "NEO4J_USERNAME")
	_ = v.BindEnv("neo4j.password", "NEO4J_PASSWORD")
	_ = v.BindEnv("qdrant.host", "QDRANT_HOST")
	_ = v.BindEnv("data.dir", "RAGDOCTOR_DATA_DIR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Missing config file is fine, defaults and env vars cover it.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be openai or anthropic, got %q", c.LLM.Provider)
	}
	switch c.Embedding.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("embedding.provider must be openai or ollama, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be greater than 0")
	}
	if c.OpenAI.BaseURL == "" {
		return fmt.Errorf("openai.base_url must not be empty")
	}
	if c.Qdrant.Host == "" {
		return fmt.Errorf("qdrant.host must not be empty")
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant.collection must not be empty")
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri must not be empty")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	return nil
}
