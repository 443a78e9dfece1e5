package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/embedder"
	"github.com/deeptutor/ragdoctor/internal/kb"
	"github.com/deeptutor/ragdoctor/internal/llm"
)

func init() {
	Default.Register(Descriptor{
		ID:          "llamaindex",
		Name:        "LlamaIndex",
		Description: "Lightweight vector pipeline: embedded chromem index, no backend services",
	}, newLlamaIndexPipeline)
}

// chromemCollection is the collection name inside each KB's chromem store.
const chromemCollection = "passages"

// llamaIndexPipeline is the lightweight fallback. It keeps its vector index
// in an embedded chromem store under the knowledge base's rag_storage
// directory, so it runs with no engine and no external database.
type llamaIndexPipeline struct {
	kbRoot string
	emb    embedder.Embedder
	gen    llm.Client
	logger *slog.Logger
}

func newLlamaIndexPipeline(cfg *config.Config, logger *slog.Logger) (Pipeline, error) {
	emb, err := embedder.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("llamaindex pipeline: %w", err)
	}
	gen, err := llm.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("llamaindex pipeline: %w", err)
	}
	return &llamaIndexPipeline{
		kbRoot: cfg.Data.KnowledgeBaseRoot(),
		emb:    emb,
		gen:    gen,
		logger: logger,
	}, nil
}

func (p *llamaIndexPipeline) ID() string { return "llamaindex" }

// Components describes the pipeline stages for diagnostics.
func (p *llamaIndexPipeline) Components() []Component {
	return []Component{
		{Role: RoleChunker, Name: "content-list"},
		{Role: RoleEmbedder, Name: p.emb.Model()},
		{Role: RoleIndexer, Name: "chromem"},
		{Role: RoleRetriever, Name: "vector"},
	}
}

// Query searches the KB's embedded vector index, building it from the
// content_list on first use, and synthesizes an answer.
func (p *llamaIndexPipeline) Query(ctx context.Context, req Request) (*Result, error) {
	kbDir := filepath.Join(p.kbRoot, req.KB)

	db, err := chromem.NewPersistentDB(filepath.Join(kbDir, kb.MarkerRAGStorage, "chromem"), false)
	if err != nil {
		return nil, fmt.Errorf("llamaindex pipeline: opening index: %w", err)
	}

	col, err := db.GetOrCreateCollection(chromemCollection, nil, p.embedFunc())
	if err != nil {
		return nil, fmt.Errorf("llamaindex pipeline: opening collection: %w", err)
	}

	if col.Count() == 0 {
		if err := p.index(ctx, kbDir, col); err != nil {
			return nil, fmt.Errorf("llamaindex pipeline: %w", err)
		}
	}

	n := NormalizeTopK(req.TopK)
	if c := col.Count(); c < n {
		n = c
	}
	if n == 0 {
		return &Result{}, nil
	}

	hits, err := col.Query(ctx, req.Query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("llamaindex pipeline: querying index: %w", err)
	}

	passages := make([]string, 0, len(hits))
	sources := make([]string, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, h.Content)
		sources = append(sources, h.Metadata["source"])
	}

	answer, err := Synthesize(ctx, p.gen, AnswerSystemPrompt, req.Query, passages)
	if err != nil {
		return nil, fmt.Errorf("llamaindex pipeline: %w", err)
	}
	return &Result{Answer: answer, Sources: sources}, nil
}

// index seeds the collection from the knowledge base's content_list.
func (p *llamaIndexPipeline) index(ctx context.Context, kbDir string, col *chromem.Collection) error {
	contents, err := kb.LoadContentList(kbDir)
	if err != nil {
		return err
	}

	var docs []chromem.Document
	for source, items := range contents {
		for _, it := range items {
			docs = append(docs, chromem.Document{
				ID:       uuid.New().String(),
				Content:  it.Text,
				Metadata: map[string]string{"source": source},
			})
		}
	}
	if len(docs) == 0 {
		return nil
	}

	p.logger.Info("building chromem index", "dir", kbDir, "passages", len(docs))
	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("indexing passages: %w", err)
	}
	return nil
}

func (p *llamaIndexPipeline) embedFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return p.emb.Embed(ctx, text)
	}
}
