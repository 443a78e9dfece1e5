package raganything

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/deeptutor/ragdoctor/internal/embedder"
	"github.com/deeptutor/ragdoctor/internal/kb"
)

// Ingest embeds a knowledge base's parsed content list and upserts the
// passages into the Qdrant collection, creating the collection on first use.
// It returns the number of passages written. Embedding is batched per source
// document to keep API calls bounded.
func (e *Engine) Ingest(ctx context.Context, kbName string, emb embedder.Embedder) (int, error) {
	contents, err := kb.LoadContentList(filepath.Join(e.kbRoot, kbName))
	if err != nil {
		return 0, fmt.Errorf("raganything: %w", err)
	}

	if err := e.store.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("raganything: %w", err)
	}

	count := 0
	for source, items := range contents {
		texts := make([]string, len(items))
		for i, it := range items {
			texts[i] = it.Text
		}

		vecs, err := emb.EmbedBatch(ctx, texts)
		if err != nil {
			return count, fmt.Errorf("raganything: embedding %s: %w", source, err)
		}
		if len(vecs) != len(items) {
			return count, fmt.Errorf("raganything: embedding %s: got %d vectors for %d passages", source, len(vecs), len(items))
		}

		for i, it := range items {
			p := Passage{
				KB:     kbName,
				Source: source,
				Text:   it.Text,
				Page:   it.PageIdx,
			}
			if err := e.store.Upsert(ctx, p, vecs[i]); err != nil {
				return count, fmt.Errorf("raganything: indexing %s: %w", source, err)
			}
			count++
		}
		e.logger.Info("indexed source", "kb", kbName, "source", source, "passages", len(items))
	}
	return count, nil
}
