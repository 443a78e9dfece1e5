// Package pipeline defines the registry of retrieval/answering pipelines.
//
// A pipeline is a configured strategy identified by a string id. Pipelines
// register a descriptor and a builder from init functions: the engine-free
// llamaindex pipeline here, the engine-backed pipelines from the engine
// packages that serve them, so a binary without an engine's import has no
// pipelines depending on it either. Construction happens per use so a broken
// collaborator surfaces as a construction error rather than a crash at
// program start.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/llm"
)

// Component roles, in the order a document flows through a pipeline.
const (
	RoleParser    = "parser"
	RoleChunker   = "chunker"
	RoleEmbedder  = "embedder"
	RoleIndexer   = "indexer"
	RoleRetriever = "retriever"
)

// defaultTopK is how many passages a pipeline retrieves when the request
// doesn't say.
const defaultTopK = 5

// contextTokenBudget caps how much retrieved text is handed to the LLM.
const contextTokenBudget = 3000

// Descriptor identifies a registered pipeline.
type Descriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Component is one named stage of a pipeline.
type Component struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Request is one retrieval/answering call.
type Request struct {
	Query string
	KB    string
	Mode  string
	TopK  int
}

// Result is a pipeline's answer with the passages it drew on.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// Pipeline answers queries against a knowledge base.
type Pipeline interface {
	ID() string
	Query(ctx context.Context, req Request) (*Result, error)
}

// ComponentLister is implemented by pipelines that can describe their stages.
type ComponentLister interface {
	Components() []Component
}

// Builder constructs a pipeline from configuration.
type Builder func(cfg *config.Config, logger *slog.Logger) (Pipeline, error)

type entry struct {
	desc  Descriptor
	build Builder
}

// Registry maps pipeline ids to descriptors and builders.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]entry{}}
}

// Default is the registry the built-in pipelines register into.
var Default = NewRegistry()

// Register adds a pipeline. It panics on duplicate ids, which indicates a
// programming error in the built-in set.
func (r *Registry) Register(desc Descriptor, build Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[desc.ID]; dup {
		panic(fmt.Sprintf("pipeline: duplicate registration of %q", desc.ID))
	}
	r.entries[desc.ID] = entry{desc: desc, build: build}
	r.order = append(r.order, desc.ID)
}

// List returns descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descs := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		descs = append(descs, r.entries[id].desc)
	}
	return descs
}

// Has reports whether the id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Get constructs the pipeline registered under id.
func (r *Registry) Get(id string, cfg *config.Config, logger *slog.Logger) (Pipeline, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pipeline: unknown id %q", id)
	}
	return e.build(cfg, logger)
}

// AnswerSystemPrompt instructs the model to stay grounded in retrieved text.
// Pipelines may substitute their own system prompt.
const AnswerSystemPrompt = "You are a study assistant. Answer using only the numbered context passages. If the context does not contain the answer, say so briefly."

// Synthesize builds a numbered-context prompt and asks the generation client
// for an answer. An empty passage list yields an empty answer without calling
// the model.
func Synthesize(ctx context.Context, gen llm.Client, system, query string, passages []string) (string, error) {
	if len(passages) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, p)
	}
	prompt := fmt.Sprintf("Context:\n%s\nQuestion: %s", llm.FitBudget(b.String(), contextTokenBudget), query)

	answer, err := gen.Complete(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesizing answer: %w", err)
	}
	return answer, nil
}

// NormalizeTopK replaces a non-positive retrieval limit with the default.
func NormalizeTopK(k int) int {
	if k <= 0 {
		return defaultTopK
	}
	return k
}
