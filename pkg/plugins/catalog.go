package plugins

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is the table of plugin implementations compiled into the host. A
// specifier's name selects the factory; the default factory, if set, handles
// names with no entry.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  Factory
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Add registers a factory under name
func (c *Catalog) Add(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("catalog entry name is required")
	}
	if f == nil {
		return fmt.Errorf("cannot add nil factory for %s", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("catalog entry already exists: %s", name)
	}
	c.factories[name] = f
	return nil
}

// MustAdd is Add that panics, for static tables built at init time
func (c *Catalog) MustAdd(name string, f Factory) *Catalog {
	if err := c.Add(name, f); err != nil {
		panic(err)
	}
	return c
}

// SetDefault sets the factory used when no entry matches
func (c *Catalog) SetDefault(f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = f
}

// Lookup returns the factory for name, falling back to the default
func (c *Catalog) Lookup(name string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if f, ok := c.factories[name]; ok {
		return f, true
	}
	if c.fallback != nil {
		return c.fallback, true
	}
	return nil, false
}

// Names returns the registered entry names, sorted
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
