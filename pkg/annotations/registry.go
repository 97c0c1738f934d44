package annotations

import (
	"sort"
	"sync"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// Registry defines the interface for managing annotation type definitions
type Registry interface {
	// Register adds a new annotation type definition
	Register(def *Definition) error

	// Lookup retrieves the definition for an annotation type name
	Lookup(name string) (*Definition, bool)

	// ListTypes returns all registered annotation type names, sorted
	ListTypes() []string

	// IsRegistered checks if an annotation type name is registered
	IsRegistered(name string) bool
}

// registry is the concrete implementation of Registry
type registry struct {
	mu   sync.RWMutex           // Protects concurrent access
	defs map[string]*Definition // Definition storage
}

// NewRegistry creates a new, empty annotation registry
func NewRegistry() Registry {
	return &registry{
		defs: make(map[string]*Definition),
	}
}

// NewBuiltinRegistry creates a registry with the built-in annotation types
func NewBuiltinRegistry() Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}

// Register adds a new annotation type definition to the registry
func (r *registry) Register(def *Definition) error {
	if def == nil {
		return siggserrors.NewRegistrationError("annotation", "<nil>", "definition is nil")
	}
	if def.Name == "" || def.Type == nil {
		return siggserrors.NewRegistrationError("annotation", def.Name, "definition has no name or type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return siggserrors.NewRegistrationError("annotation", def.Name, "already registered")
	}

	r.defs[def.Name] = def
	return nil
}

// Lookup retrieves the definition for an annotation type name
func (r *registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.defs[name]
	return def, exists
}

// ListTypes returns all registered annotation type names
func (r *registry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// IsRegistered checks if an annotation type name is registered
func (r *registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.defs[name]
	return exists
}

// Register defines annotation type T under name and adds it to the registry
func Register[T any](r Registry, name string, constructors ...interface{}) error {
	def, err := Define[T](name, constructors...)
	if err != nil {
		regErr := siggserrors.NewRegistrationError("annotation", name, "invalid definition")
		regErr.WithCause(err)
		return regErr
	}
	return r.Register(def)
}
