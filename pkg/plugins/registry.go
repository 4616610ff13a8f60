package plugins

import (
	"fmt"
	"sync"
)

// Registry holds loaded plugins keyed by manifest name, in insertion order.
// It is written during startup only; after Seal it is read-only.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*LoadedPlugin
	ordered []*LoadedPlugin
	sealed  bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*LoadedPlugin),
	}
}

// Register adds a plugin to the registry
func (r *Registry) Register(p *LoadedPlugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil plugin")
	}
	if p.Manifest == nil {
		return fmt.Errorf("plugin has nil manifest")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}

	name := p.Manifest.Name
	if existing, exists := r.byName[name]; exists {
		return &DuplicateNameError{
			Name:           name,
			ModulePath:     p.Manifest.ModulePath,
			ExistingModule: existing.Manifest.ModulePath,
		}
	}

	r.byName[name] = p
	r.ordered = append(r.ordered, p)
	return nil
}

// Find retrieves a plugin by name
func (r *Registry) Find(name string) (*LoadedPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[name]
	return p, ok
}

// All returns every plugin in registration order
func (r *Registry) All() []*LoadedPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*LoadedPlugin, len(r.ordered))
	copy(result, r.ordered)
	return result
}

// Count returns the number of registered plugins
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ordered)
}

// Seal makes the registry read-only
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
