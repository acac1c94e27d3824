package speech

import (
	"slices"
	"sync"
)

// Registry manages available speech engines.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	def     string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
	}
}

// Register adds an engine. The first registered engine becomes the default.
func (r *Registry) Register(engine Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := engine.Name()
	if _, exists := r.engines[name]; exists {
		return ErrEngineExists
	}

	r.engines[name] = engine
	if r.def == "" {
		r.def = name
	}
	return nil
}

// Get retrieves an engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, exists := r.engines[name]
	if !exists {
		return nil, ErrEngineNotFound
	}
	return engine, nil
}

// Default returns the default engine.
func (r *Registry) Default() (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.def == "" {
		return nil, ErrEngineNotFound
	}
	return r.engines[r.def], nil
}

// SetDefault sets the default engine by name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[name]; !exists {
		return ErrEngineNotFound
	}
	r.def = name
	return nil
}

// List returns all registered engine names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
