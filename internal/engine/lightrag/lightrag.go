// Package lightrag provides the graph-based LightRAG engine backed by Neo4j.
// Blank-import this package to compile the engine into a binary.
package lightrag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/engine"
)

// EngineName is the registry identifier for this engine.
const EngineName = "lightrag"

func init() {
	engine.Register(EngineName, New)
}

// Chunk is one retrievable text node from the knowledge graph.
type Chunk struct {
	ID     string
	KB     string
	Text   string
	Entity string
}

// Engine backs the lightrag pipeline with entity/chunk retrieval over a
// Neo4j knowledge graph.
type Engine struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// New constructs the engine. The driver connects lazily; Ready verifies
// connectivity.
func New(cfg *config.Config, logger *slog.Logger) (engine.Engine, error) {
	return newEngine(cfg, logger)
}

func newEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4j.URI,
		neo4j.BasicAuth(cfg.Neo4j.Username, cfg.Neo4j.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("lightrag: creating driver: %w", err)
	}
	return &Engine{driver: driver, logger: logger}, nil
}

// Name returns the registry identifier.
func (e *Engine) Name() string { return EngineName }

// Describe returns a one-line human description.
func (e *Engine) Describe() string {
	return "graph retrieval engine (Neo4j knowledge graph)"
}

// Ready verifies the Neo4j server is reachable and credentials are valid.
func (e *Engine) Ready(ctx context.Context) error {
	if err := e.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("lightrag: neo4j unreachable: %w", err)
	}
	return nil
}

// RetrieveChunks returns graph chunks for a query. Local mode matches the
// query against entity names one hop from each chunk; every other mode falls
// back to a substring match on the chunk text itself.
func (e *Engine) RetrieveChunks(ctx context.Context, kbName, query, mode string, limit int) ([]Chunk, error) {
	cypher := `
		MATCH (c:Chunk {kb: $kb})
		WHERE toLower(c.text) CONTAINS toLower($query)
		RETURN c.id AS id, c.text AS text, "" AS entity
		LIMIT $limit`
	if mode == "local" {
		cypher = `
			MATCH (en:Entity {kb: $kb})-[:MENTIONED_IN]->(c:Chunk)
			WHERE toLower(en.name) CONTAINS toLower($query)
			RETURN c.id AS id, c.text AS text, en.name AS entity
			LIMIT $limit`
	}

	result, err := neo4j.ExecuteQuery(ctx, e.driver, cypher,
		map[string]any{"kb": kbName, "query": query, "limit": limit},
		neo4j.EagerResultTransformer,
	)
	if err != nil {
		return nil, fmt.Errorf("lightrag: querying graph: %w", err)
	}

	chunks := make([]Chunk, 0, len(result.Records))
	for _, rec := range result.Records {
		var c Chunk
		c.KB = kbName
		if v, ok := rec.Get("id"); ok {
			c.ID, _ = v.(string)
		}
		if v, ok := rec.Get("text"); ok {
			c.Text, _ = v.(string)
		}
		if v, ok := rec.Get("entity"); ok {
			c.Entity, _ = v.(string)
		}
		chunks = append(chunks, c)
	}
	e.logger.Debug("graph retrieval", "kb", kbName, "mode", mode, "chunks", len(chunks))
	return chunks, nil
}

// Close releases the Neo4j driver.
func (e *Engine) Close() error {
	return e.driver.Close(context.Background())
}
