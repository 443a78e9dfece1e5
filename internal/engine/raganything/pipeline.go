package raganything

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/embedder"
	"github.com/deeptutor/ragdoctor/internal/llm"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

// The engine-backed pipelines register here rather than in the pipeline
// package, so a binary built without this engine has neither the engine nor
// the pipelines that need it.
func init() {
	pipeline.Default.Register(pipeline.Descriptor{
		ID:          "raganything",
		Name:        "RAG-Anything",
		Description: "Multimodal document pipeline: MinerU parsing, vector retrieval over Qdrant",
	}, newStandardPipeline)

	pipeline.Default.Register(pipeline.Descriptor{
		ID:          "academic",
		Name:        "Academic",
		Description: "RAG-Anything variant tuned for scholarly papers with citation-style answers",
	}, newAcademicPipeline)
}

// enginePipeline answers queries from the engine's vector store. The academic
// pipeline reuses it with a different prompt.
type enginePipeline struct {
	id     string
	system string
	eng    *Engine
	emb    embedder.Embedder
	gen    llm.Client
	logger *slog.Logger
}

func newStandardPipeline(cfg *config.Config, logger *slog.Logger) (pipeline.Pipeline, error) {
	return buildPipeline("raganything", pipeline.AnswerSystemPrompt, cfg, logger)
}

func newAcademicPipeline(cfg *config.Config, logger *slog.Logger) (pipeline.Pipeline, error) {
	const system = "You are an academic research assistant. Answer from the numbered context passages only, citing passage numbers like [1]. Note explicitly when the context is insufficient."
	return buildPipeline("academic", system, cfg, logger)
}

func buildPipeline(id, system string, cfg *config.Config, logger *slog.Logger) (pipeline.Pipeline, error) {
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", id, err)
	}

	emb, err := embedder.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", id, err)
	}
	gen, err := llm.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", id, err)
	}

	return &enginePipeline{
		id:     id,
		system: system,
		eng:    eng,
		emb:    emb,
		gen:    gen,
		logger: logger,
	}, nil
}

func (p *enginePipeline) ID() string { return p.id }

// Components describes the pipeline stages for diagnostics.
func (p *enginePipeline) Components() []pipeline.Component {
	return []pipeline.Component{
		{Role: pipeline.RoleParser, Name: "mineru"},
		{Role: pipeline.RoleChunker, Name: "multimodal"},
		{Role: pipeline.RoleEmbedder, Name: p.emb.Model()},
		{Role: pipeline.RoleIndexer, Name: "qdrant"},
		{Role: pipeline.RoleRetriever, Name: "vector"},
	}
}

// Query embeds the question, retrieves similar passages from the engine's
// vector store and synthesizes an answer. No retrieved passages yield an
// empty answer rather than an error.
func (p *enginePipeline) Query(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	vec, err := p.emb.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: embedding query: %w", p.id, err)
	}

	hits, err := p.eng.Store().Search(ctx, vec, req.KB, uint64(pipeline.NormalizeTopK(req.TopK)))
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: retrieving passages: %w", p.id, err)
	}

	passages := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, h.Passage.Text)
		sources = append(sources, h.Passage.Source)
	}

	answer, err := pipeline.Synthesize(ctx, p.gen, p.system, req.Query, passages)
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", p.id, err)
	}
	return &pipeline.Result{Answer: answer, Sources: sources}, nil
}
