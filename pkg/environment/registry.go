// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"slices"
	"sync"
)

// Registry owns named environment descriptors. Consumers receive
// non-owning *Environment references from Lookup; redefining a name installs
// a new descriptor and leaves previously handed-out references untouched.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Environment
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Environment)}
}

// Define creates a descriptor under name, replacing any previous definition.
func (r *Registry) Define(name string, kind Kind, targets ...Target) *Environment {
	env := New(name, kind, targets...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = env
	return env
}

// Ensure returns the current descriptor for name when it already has the
// same kind and targets, and otherwise behaves like Define. Re-resolving an
// unchanged definition therefore keeps its identity.
func (r *Registry) Ensure(name string, kind Kind, targets ...Target) (env *Environment, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byName[name]; ok && cur.kind == kind && slices.Equal(cur.targets, targets) {
		return cur, false
	}
	env = New(name, kind, targets...)
	r.byName[name] = env
	return env, true
}

// Lookup returns the current descriptor for name.
func (r *Registry) Lookup(name string) (*Environment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	env, ok := r.byName[name]
	return env, ok
}

// Names returns the defined names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of defined environments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
