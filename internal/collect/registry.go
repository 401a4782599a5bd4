package collect

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages collector schemas by name.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// Register adds a schema to the registry.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return fmt.Errorf("cannot register nil schema")
	}
	if s.Name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("schema %s has no rules", s.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.Name]; exists {
		return fmt.Errorf("schema already registered: %s", s.Name)
	}

	r.schemas[s.Name] = s
	return nil
}

// Get returns a schema by name.
func (r *Registry) Get(name string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema not found: %s", name)
	}
	return s, nil
}

// List returns all registered schema names (sorted).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a schema is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[name]
	return ok
}

// Count returns the number of registered schemas.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Unregister removes a schema from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schemas[name]; !ok {
		return fmt.Errorf("schema not found: %s", name)
	}
	delete(r.schemas, name)
	return nil
}

// DefaultRegistry holds the built-in instrument schemas.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []*Schema{RunInfo(), Summary(), Chart()} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a schema to the default registry.
func Register(s *Schema) error {
	return DefaultRegistry.Register(s)
}

// Get returns a schema from the default registry.
func Get(name string) (*Schema, error) {
	return DefaultRegistry.Get(name)
}

// List returns all schema names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}
