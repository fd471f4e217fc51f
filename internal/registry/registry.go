package registry

import (
	"sort"
	"sync"
)

// Module is the interface that all runner modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the runners registered for a single application instance.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]*RegisteredRunner
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{runners: make(map[string]*RegisteredRunner)}
}

// Use registers every given module.
func (r *Registry) Use(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Runner returns the handler registered for runnerType.
func (r *Registry) Runner(runnerType string) (*RegisteredRunner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.runners[runnerType]
	return h, ok
}

// RunnerTypes lists the registered runner types in sorted order.
func (r *Registry) RunnerTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.runners))
	for t := range r.runners {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Len returns the number of registered runners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runners)
}
