package loader

import (
	"sync"
)

// Registry is a keyed store of parse resources used for reuse and lifecycle cleanup.
// Keys are "<kind>:<id>" strings. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	objects map[string]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{objects: map[string]any{}}
}

// Get returns the object stored under key.
func (r *Registry) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.objects[key]
	return v, ok
}

// Add stores object under key, replacing any previous entry.
func (r *Registry) Add(key string, object any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[key] = object
}

// GetOrAdd returns the object under key, storing create() first when the key is absent.
// loaded reports whether the object already existed.
func (r *Registry) GetOrAdd(key string, create func() any) (object any, loaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.objects[key]; ok {
		return v, true
	}
	v := create()
	r.objects[key] = v
	return v, false
}

// Remove deletes the entry under key.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, key)
}

// RemoveAll empties the registry.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.objects)
}

// Len returns the number of stored entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}
