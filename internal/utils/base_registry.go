package utils

import (
	"sort"
	"sync"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// RegistryValidator is a function that validates a key-value pair before registration
type RegistryValidator[V any] func(key string, value V, existing map[string]V) error

// BaseRegistry provides a generic, thread-safe, name-keyed registry with an
// optional validation hook
type BaseRegistry[V any] struct {
	mu            sync.RWMutex
	items         map[string]V
	validator     RegistryValidator[V]
	componentType string // e.g. "type", used in registration errors
}

// NewBaseRegistry creates a new base registry for the named component type
func NewBaseRegistry[V any](componentType string) *BaseRegistry[V] {
	return &BaseRegistry[V]{
		items:         make(map[string]V),
		componentType: componentType,
	}
}

// SetValidator sets the validation function for this registry
func (r *BaseRegistry[V]) SetValidator(validator RegistryValidator[V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = validator
}

// Register adds an item to the registry. An empty key or a key that is
// already present is rejected.
func (r *BaseRegistry[V]) Register(key string, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if key == "" {
		return siggserrors.NewRegistrationError(r.componentType, key, "name cannot be empty")
	}
	if _, exists := r.items[key]; exists {
		return siggserrors.NewRegistrationError(r.componentType, key, "already registered")
	}
	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return siggserrors.NewRegistrationError(r.componentType, key, err.Error())
		}
	}

	r.items[key] = value
	return nil
}

// Get retrieves an item from the registry
func (r *BaseRegistry[V]) Get(key string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.items[key]
	return value, exists
}

// Has checks if a key exists in the registry
func (r *BaseRegistry[V]) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[key]
	return exists
}

// List returns all keys in the registry, sorted
func (r *BaseRegistry[V]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of items in the registry
func (r *BaseRegistry[V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
