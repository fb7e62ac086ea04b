package actor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBehavior is returned when resolving a behavior that was never
// registered.
var ErrUnknownBehavior = errors.New("unknown behavior")

// Registry maps behavior names to behaviors.
type Registry struct {
	mu        sync.RWMutex
	behaviors map[string]Behavior
}

// NewRegistry creates an empty behavior registry.
func NewRegistry() *Registry {
	return &Registry{
		behaviors: make(map[string]Behavior),
	}
}

// Register adds a behavior under the given name, replacing any previous one.
func (r *Registry) Register(name string, b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviors[name] = b
}

// Resolve returns the behavior registered under name.
func (r *Registry) Resolve(name string) (Behavior, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.behaviors[name]
	if !ok {
		return nil, fmt.Errorf("behavior %q: %w", name, ErrUnknownBehavior)
	}
	return b, nil
}

// List returns the registered behavior names, sorted for a stable API
// response.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.behaviors))
	for name := range r.behaviors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
