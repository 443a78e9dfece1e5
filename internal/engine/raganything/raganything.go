// Package raganything provides the multimodal RAG-Anything engine, which
// keeps its derived indexes in a Qdrant collection. Blank-import this package
// to compile the engine into a binary.
package raganything

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/engine"
)

// EngineName is the registry identifier for this engine.
const EngineName = "raganything"

func init() {
	engine.Register(EngineName, New)
}

// Engine backs the raganything and academic pipelines with a Qdrant
// vector store over multimodally parsed documents.
type Engine struct {
	store  *VectorStore
	kbRoot string
	logger *slog.Logger
}

// New constructs the engine. The gRPC connection is created lazily, so
// construction succeeds even when Qdrant is down; Ready reports that case.
func New(cfg *config.Config, logger *slog.Logger) (engine.Engine, error) {
	return newEngine(cfg, logger)
}

func newEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	st, err := NewVectorStore(
		cfg.Qdrant.Host,
		cfg.Qdrant.GRPCPort,
		cfg.Qdrant.Collection,
		uint64(cfg.Embedding.Dimension),
		cfg.Qdrant.UseTLS,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("raganything: %w", err)
	}
	return &Engine{
		store:  st,
		kbRoot: cfg.Data.KnowledgeBaseRoot(),
		logger: logger,
	}, nil
}

// Name returns the registry identifier.
func (e *Engine) Name() string { return EngineName }

// Describe returns a one-line human description.
func (e *Engine) Describe() string {
	return "multimodal document engine (Qdrant vector storage)"
}

// Ready verifies the knowledge base root exists and Qdrant answers a
// lightweight RPC.
func (e *Engine) Ready(ctx context.Context) error {
	if _, err := os.Stat(e.kbRoot); err != nil {
		return fmt.Errorf("raganything: knowledge base root %s: %w", e.kbRoot, err)
	}
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("raganything: %w", err)
	}
	return nil
}

// Store exposes the engine's vector store to pipelines.
func (e *Engine) Store() *VectorStore { return e.store }

// PassageCount reports how many passages the Qdrant collection holds.
func (e *Engine) PassageCount(ctx context.Context) (int64, error) {
	return e.store.Count(ctx)
}

// Close releases the Qdrant connection.
func (e *Engine) Close() error { return e.store.Close() }
