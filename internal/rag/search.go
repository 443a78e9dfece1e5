// Package rag exposes the one-shot search entrypoint used by the diagnose
// live test, the search subcommand and the MCP server.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/metrics"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

// Retrieval modes accepted by Search. Pipelines that don't distinguish modes
// treat everything as naive.
var validModes = map[string]bool{
	"naive":  true,
	"local":  true,
	"global": true,
	"hybrid": true,
}

// Request is one search call.
type Request struct {
	Query    string
	KBName   string
	Mode     string
	Provider string
	TopK     int
}

// Result is the answer a pipeline produced.
type Result struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
	Provider string   `json:"provider"`
	KBName   string   `json:"kb_name"`
}

// Search resolves the provider against the registry, constructs the pipeline
// and runs a single blocking query. An empty Provider falls back to the
// configured default; an empty Mode means naive.
func Search(ctx context.Context, reg *pipeline.Registry, cfg *config.Config, logger *slog.Logger, req Request) (*Result, error) {
	metrics.Inc(metrics.SearchTotal)

	if req.Query == "" {
		metrics.Inc(metrics.SearchFailures)
		return nil, fmt.Errorf("search: query must not be empty")
	}
	if req.KBName == "" {
		metrics.Inc(metrics.SearchFailures)
		return nil, fmt.Errorf("search: knowledge base name must not be empty")
	}

	provider := req.Provider
	if provider == "" {
		provider = cfg.Provider
	}
	if !reg.Has(provider) {
		metrics.Inc(metrics.SearchFailures)
		return nil, fmt.Errorf("search: unknown provider %q", provider)
	}

	mode := req.Mode
	if mode == "" {
		mode = "naive"
	}
	if !validModes[mode] {
		metrics.Inc(metrics.SearchFailures)
		return nil, fmt.Errorf("search: invalid mode %q", mode)
	}

	pl, err := reg.Get(provider, cfg, logger)
	if err != nil {
		metrics.Inc(metrics.SearchFailures)
		return nil, fmt.Errorf("search: constructing pipeline: %w", err)
	}

	logger.Debug("running search", "provider", provider, "kb", req.KBName, "mode", mode)

	res, err := pl.Query(ctx, pipeline.Request{
		Query: req.Query,
		KB:    req.KBName,
		Mode:  mode,
		TopK:  req.TopK,
	})
	if err != nil {
		metrics.Inc(metrics.SearchFailures)
		return nil, fmt.Errorf("search: %w", err)
	}

	return &Result{
		Answer:   res.Answer,
		Sources:  res.Sources,
		Provider: provider,
		KBName:   req.KBName,
	}, nil
}
