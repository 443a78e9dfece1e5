package raganything

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{Provider: "raganything"}
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.Embedding.Provider = "openai"
	cfg.Embedding.Model = "text-embedding-3-small"
	cfg.Embedding.Dimension = 768
	cfg.Qdrant.Host = "localhost"
	cfg.Qdrant.GRPCPort = 6334
	cfg.Qdrant.Collection = "passages"
	cfg.Data.Dir = t.TempDir()
	return cfg
}

func TestPipelineRegistration(t *testing.T) {
	// Importing this package registers both engine-backed pipelines.
	assert.True(t, pipeline.Default.Has("raganything"))
	assert.True(t, pipeline.Default.Has("academic"))
}

func TestPipelineConstruction(t *testing.T) {
	// Qdrant connects lazily, so construction succeeds without a server.
	pl, err := pipeline.Default.Get("raganything", testConfig(t), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "raganything", pl.ID())

	cl, ok := pl.(pipeline.ComponentLister)
	require.True(t, ok)
	roles := make(map[string]string)
	for _, c := range cl.Components() {
		roles[c.Role] = c.Name
	}
	assert.Equal(t, "qdrant", roles[pipeline.RoleIndexer])
	assert.Equal(t, "text-embedding-3-small", roles[pipeline.RoleEmbedder])

	academic, err := pipeline.Default.Get("academic", testConfig(t), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "academic", academic.ID())
}

func TestPipelineConstructionWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenAI.APIKey = ""

	_, err := pipeline.Default.Get("raganything", cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestIngestMissingContentList(t *testing.T) {
	eng, err := newEngine(testConfig(t), testLogger())
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	// The content list is read before any network call, so a knowledge base
	// without one fails fast.
	_, err = eng.Ingest(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content_list")
}
