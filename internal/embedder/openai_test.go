package embedder

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeptutor/ragdoctor/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenAIEmbedderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		assert.Equal(t, []string{"hello"}, req.Input)
		assert.Equal(t, 4, req.Dimensions)

		_ = json.NewEncoder(w).Encode(openAIEmbedResponse{
			Data: []openAIEmbedData{{Embedding: []float32{0.1, 0.2, 0.3, 0.4}, Index: 0}},
		})
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(srv.URL, "test-key", "", 4, testLogger())
	vec, err := emb.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vec)
	assert.Equal(t, 4, emb.Dimension())
	assert.Equal(t, "text-embedding-3-small", emb.Model())
}

func TestOpenAIEmbedderBatchOrdering(t *testing.T) {
	// The API may return items out of order; output must follow input order.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openAIEmbedResponse{
			Data: []openAIEmbedData{
				{Embedding: []float32{2}, Index: 1},
				{Embedding: []float32{1}, Index: 0},
			},
		})
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(srv.URL, "k", "m", 1, testLogger())
	vecs, err := emb.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1}, vecs[0])
	assert.Equal(t, []float32{2}, vecs[1])
}

func TestOpenAIEmbedderEmptyBatch(t *testing.T) {
	emb := NewOpenAIEmbedder("http://unused", "k", "m", 1, testLogger())
	vecs, err := emb.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestOpenAIEmbedderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(srv.URL, "bad-key", "m", 1, testLogger())
	_, err := emb.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
	assert.Contains(t, err.Error(), "401")
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		OpenAI:    config.OpenAIConfig{BaseURL: "https://api.openai.com/v1"},
		Embedding: config.EmbeddingConfig{Provider: "openai", Model: "m", Dimension: 8},
		Ollama:    config.OllamaConfig{BaseURL: "http://localhost:11434", Model: "nomic-embed-text"},
	}

	// openai without a key fails construction.
	_, err := NewFromConfig(cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg.OpenAI.APIKey = "sk-test"
	emb, err := NewFromConfig(cfg, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &OpenAIEmbedder{}, emb)

	cfg.Embedding.Provider = "ollama"
	emb, err = NewFromConfig(cfg, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &OllamaEmbedder{}, emb)

	cfg.Embedding.Provider = "bogus"
	_, err = NewFromConfig(cfg, testLogger())
	require.Error(t, err)
}
