package lint

import (
	"sync"
)

// Registry holds validators in registration order.
// Order matters: validators run over each region in the order they were registered.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]int
	list   []Validator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]int),
	}
}

// Register appends a validator.
// A validator with the same name is replaced in place, keeping its position.
func (r *Registry) Register(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byName[v.Name()]; ok {
		r.list[idx] = v
		return
	}
	r.byName[v.Name()] = len(r.list)
	r.list = append(r.list, v)
}

// Get retrieves a validator by name.
//
//nolint:ireturn // registry returns the interface it stores
func (r *Registry) Get(name string) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.list[idx], true
}

// Validators returns all registered validators in registration order.
func (r *Registry) Validators() []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Validator, len(r.list))
	copy(out, r.list)
	return out
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.list))
	for i, v := range r.list {
		names[i] = v.Name()
	}
	return names
}

// Len returns the number of registered validators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

// DefaultRegistry is the global registry for built-in validators.
// Validators register themselves during init().
//
//nolint:gochecknoglobals // Global registry is intentional for validator registration
var DefaultRegistry = NewRegistry()
