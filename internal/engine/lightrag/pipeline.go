package lightrag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/llm"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

// The lightrag pipeline registers here rather than in the pipeline package,
// so a binary built without this engine has no pipeline needing it either.
func init() {
	pipeline.Default.Register(pipeline.Descriptor{
		ID:          "lightrag",
		Name:        "LightRAG",
		Description: "Graph-based pipeline: entity/chunk retrieval over a Neo4j knowledge graph",
	}, newGraphPipeline)
}

type graphPipeline struct {
	eng    *Engine
	gen    llm.Client
	logger *slog.Logger
}

func newGraphPipeline(cfg *config.Config, logger *slog.Logger) (pipeline.Pipeline, error) {
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("lightrag pipeline: %w", err)
	}

	gen, err := llm.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("lightrag pipeline: %w", err)
	}

	return &graphPipeline{eng: eng, gen: gen, logger: logger}, nil
}

func (p *graphPipeline) ID() string { return "lightrag" }

// Components describes the pipeline stages for diagnostics.
func (p *graphPipeline) Components() []pipeline.Component {
	return []pipeline.Component{
		{Role: pipeline.RoleChunker, Name: "token-window"},
		{Role: pipeline.RoleIndexer, Name: "neo4j"},
		{Role: pipeline.RoleRetriever, Name: "graph"},
	}
}

// Query retrieves chunks from the knowledge graph and synthesizes an answer.
func (p *graphPipeline) Query(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	chunks, err := p.eng.RetrieveChunks(ctx, req.KB, req.Query, req.Mode, pipeline.NormalizeTopK(req.TopK))
	if err != nil {
		return nil, fmt.Errorf("lightrag pipeline: %w", err)
	}

	passages := make([]string, 0, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		passages = append(passages, c.Text)
		if c.Entity != "" {
			sources = append(sources, c.Entity)
		}
	}

	answer, err := pipeline.Synthesize(ctx, p.gen, pipeline.AnswerSystemPrompt, req.Query, passages)
	if err != nil {
		return nil, fmt.Errorf("lightrag pipeline: %w", err)
	}
	return &pipeline.Result{Answer: answer, Sources: sources}, nil
}
