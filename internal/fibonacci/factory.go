package fibonacci

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownEngine is returned when an engine name is not registered.
var ErrUnknownEngine = errors.New("unknown engine")

// Engine names registered by NewDefaultFactory.
const (
	EngineFastDoubling = "fast"
	EngineIterative    = "iterative"
)

// EngineFactory resolves engines by their short name.
type EngineFactory interface {
	// Get returns the engine registered under name.
	Get(name string) (Engine, error)
	// List returns the registered names in sorted order.
	List() []string
	// Register adds or replaces an engine.
	Register(name string, e Engine)
}

// DefaultFactory is a concurrency-safe, map-backed EngineFactory.
type DefaultFactory struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewDefaultFactory returns a factory holding the fast doubling and iterative
// engines.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{engines: make(map[string]Engine)}
	f.Register(EngineFastDoubling, FastDoubling{})
	f.Register(EngineIterative, Iterative{})
	return f
}

// Register adds or replaces the engine stored under name.
func (f *DefaultFactory) Register(name string, e Engine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.engines[name] = e
}

// Get returns the engine stored under name.
//
// Parameters:
//   - name: The short engine name (e.g. "fast").
//
// Returns:
//   - Engine: The registered engine.
//   - error: ErrUnknownEngine (wrapped) if name is not registered.
func (f *DefaultFactory) Get(name string) (Engine, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return e, nil
}

// List returns the registered engine names, sorted.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.engines))
	for name := range f.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
