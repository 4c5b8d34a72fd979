package registry

import (
	"fmt"
	"log/slog"
	"sync"
)

// Module is the interface that all converter modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the ordered converter descriptors of a single application
// instance.
type Registry struct {
	mu          sync.RWMutex
	descriptors []*Descriptor
	byName      map[string]*Descriptor
	version     uint64
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*Descriptor),
	}
}

// Register appends a converter descriptor. Registering two descriptors with
// the same name is a programmer error and panics.
func (r *Registry) Register(d *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d == nil || d.Name == "" {
		panic("converter descriptor must have a name")
	}
	if _, exists := r.byName[d.Name]; exists {
		panic(fmt.Sprintf("converter with name '%s' already registered", d.Name))
	}
	slog.Debug("Registering converter.", "name", d.Name)
	r.descriptors = append(r.descriptors, d)
	r.byName[d.Name] = d
	r.version++
}

// Unregister removes a descriptor by name. It reports whether one was removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; !exists {
		return false
	}
	delete(r.byName, name)
	for i, d := range r.descriptors {
		if d.Name == name {
			r.descriptors = append(r.descriptors[:i:i], r.descriptors[i+1:]...)
			break
		}
	}
	r.version++
	return true
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// Version changes on every registration change.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
