package lightrag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

func TestPipelineRegistration(t *testing.T) {
	// Importing this package registers the graph pipeline.
	assert.True(t, pipeline.Default.Has("lightrag"))
}

func TestPipelineConstruction(t *testing.T) {
	cfg := &config.Config{}
	cfg.Neo4j.URI = "neo4j://localhost:7687"
	cfg.Neo4j.Username = "neo4j"
	cfg.Neo4j.Password = "password"
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = "https://api.openai.com/v1"

	// The driver connects lazily, so construction succeeds without a server.
	pl, err := pipeline.Default.Get("lightrag", cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "lightrag", pl.ID())

	cl, ok := pl.(pipeline.ComponentLister)
	require.True(t, ok)
	roles := make(map[string]string)
	for _, c := range cl.Components() {
		roles[c.Role] = c.Name
	}
	assert.Equal(t, "neo4j", roles[pipeline.RoleIndexer])
	assert.Equal(t, "graph", roles[pipeline.RoleRetriever])
}
