// Package engine defines the registry of optional RAG backend engines.
//
// Engines register themselves from init functions in their own packages and
// are compiled in through blank imports in the binary, the same way
// database/sql drivers are. A build without an engine's import simply reports
// it as unavailable, which is how the diagnostic maps the original optional
// dependencies onto a statically linked program.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/deeptutor/ragdoctor/internal/config"
)

// Engine is a retrieval backend that pipelines build on.
type Engine interface {
	// Name returns the registry identifier.
	Name() string

	// Describe returns a one-line human description.
	Describe() string

	// Ready verifies the engine's backing services are reachable.
	Ready(ctx context.Context) error

	// Close releases any held connections.
	Close() error
}

// Counter is implemented by engines that can report how many items their
// backing store holds.
type Counter interface {
	PassageCount(ctx context.Context) (int64, error)
}

// Factory builds an engine from configuration. Construction should be cheap;
// connectivity is verified by Ready.
type Factory func(cfg *config.Config, logger *slog.Logger) (Engine, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes an engine available under name. It panics on duplicate
// registration, which indicates conflicting blank imports.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("engine: duplicate registration of %q", name))
	}
	factories[name] = f
}

// Registered reports whether an engine with the given name is compiled in.
func Registered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Names returns the registered engine names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open builds the named engine from configuration.
func Open(name string, cfg *config.Config, logger *slog.Logger) (Engine, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("engine: %q is not compiled into this build", name)
	}
	return f(cfg, logger)
}
