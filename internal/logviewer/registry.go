package logviewer

import (
	"fmt"
	"sort"
	"sync"
)

// SourceConfig carries the settings every source factory may read.
type SourceConfig struct {
	Dir            string
	FilePrefix     string
	MaxWindowBytes int64
	SQLitePath     string
}

// Factory creates a Source from configuration. Each source type registers a
// Factory in init().
type Factory interface {
	Name() string
	Create(cfg SourceConfig) (Source, error)
}

// Registry holds registered source factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// GlobalRegistry is the registry source types add themselves to.
var GlobalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory, replacing any factory with the same name.
func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.Name()] = factory
}

// Create builds the source registered under name.
func (r *Registry) Create(name string, cfg SourceConfig) (Source, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown log source: %s", name)
	}
	return factory.Create(cfg)
}

// ListRegistered returns the registered source names, sorted.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
