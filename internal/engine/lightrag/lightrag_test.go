package lightrag

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeptutor/ragdoctor/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewLazyConnect(t *testing.T) {
	cfg := &config.Config{}
	cfg.Neo4j.URI = "neo4j://localhost:7687"
	cfg.Neo4j.Username = "neo4j"
	cfg.Neo4j.Password = "password"

	// The driver connects lazily, so construction succeeds without a server.
	eng, err := New(cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, EngineName, eng.Name())
	assert.Contains(t, eng.Describe(), "Neo4j")
	require.NoError(t, eng.Close())
}

func TestNewInvalidURI(t *testing.T) {
	cfg := &config.Config{}
	cfg.Neo4j.URI = "://not-a-uri"

	_, err := New(cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lightrag")
}
