package game

import (
	"fmt"
	"sync"
)

// Registry manages machine registration and lookup by kind.
// It is an explicitly constructed object, not a package singleton, so the
// session manager can be tested in isolation.
type Registry struct {
	machines map[Kind]Machine
	mu       sync.RWMutex
}

// NewRegistry creates a new game registry.
func NewRegistry() *Registry {
	return &Registry{
		machines: make(map[Kind]Machine),
	}
}

// Register adds a machine to the registry. A machine registered for an
// already known kind replaces the previous one.
func (r *Registry) Register(m Machine) error {
	if m == nil {
		return fmt.Errorf("cannot register nil machine")
	}
	if m.Kind() == "" {
		return fmt.Errorf("machine kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.machines[m.Kind()] = m
	return nil
}

// Get retrieves a machine by kind.
func (r *Registry) Get(kind Kind) (Machine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.machines[kind]
	return m, ok
}

// Kinds returns all registered game kinds.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.machines))
	for k := range r.machines {
		kinds = append(kinds, k)
	}
	return kinds
}

// Count returns the number of registered machines.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.machines)
}
