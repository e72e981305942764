package core

import (
	"fmt"
	"sort"
	"sync"
)

type AdapterRegistry struct {
	mu        sync.RWMutex
	factories map[string]AdapterFactory
}

func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{factories: make(map[string]AdapterFactory)}
}

func (r *AdapterRegistry) Register(name string, factory AdapterFactory) error {
	if r == nil {
		return fmt.Errorf("core: adapter registry is nil")
	}
	if factory == nil {
		return fmt.Errorf("core: adapter factory is nil")
	}
	key := CanonicalProviderName(name)
	if key == "" {
		return fmt.Errorf("core: adapter name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]AdapterFactory)
	}
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("core: adapter already registered: %s", key)
	}
	r.factories[key] = factory
	return nil
}

func (r *AdapterRegistry) Has(name string) bool {
	_, ok := r.factory(name)
	return ok
}

func (r *AdapterRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Create builds a fresh adapter for resolved using the factory registered
// under resolved.Adapter.
func (r *AdapterRegistry) Create(resolved ResolvedProviderConfig, collaborators Collaborators) (Adapter, error) {
	name := resolved.Adapter
	if CanonicalProviderName(name) == "" {
		name = resolved.Name
	}
	factory, ok := r.factory(name)
	if !ok {
		return nil, &UnknownProviderError{Name: CanonicalProviderName(name)}
	}
	adapter, err := factory(resolved, collaborators.Transport, collaborators.Storage, collaborators.Logger)
	if err != nil {
		return nil, err
	}
	if adapter == nil {
		return nil, fmt.Errorf("core: adapter factory %q returned nil", CanonicalProviderName(name))
	}
	return adapter, nil
}

func (r *AdapterRegistry) factory(name string) (AdapterFactory, bool) {
	if r == nil {
		return nil, false
	}
	key := CanonicalProviderName(name)
	if key == "" {
		return nil, false
	}
	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	return factory, ok
}

var _ Registry = (*AdapterRegistry)(nil)
