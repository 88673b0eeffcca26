// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"sync"

	"github.com/samber/oops"
)

// MapRegistry is the per-process index of locally owned maps, used to
// answer "do I own this identifier?". Keys are case-insensitive.
type MapRegistry struct {
	mu   sync.RWMutex
	maps map[string]*LocalMap
}

// NewMapRegistry creates an empty registry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{maps: make(map[string]*LocalMap)}
}

// Register adds a local map. Registering an identifier twice fails:
// exactly one local instance may own an identifier.
func (r *MapRegistry) Register(m *LocalMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canonical(m.Identifier())
	if _, exists := r.maps[key]; exists {
		return oops.Code("ALREADY_REGISTERED").
			With("identifier", m.Identifier()).
			Wrap(ErrAlreadyRegistered)
	}
	r.maps[key] = m
	return nil
}

// Unregister removes the identifier. Unknown identifiers are a no-op.
func (r *MapRegistry) Unregister(identifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.maps, canonical(identifier))
}

// Lookup returns the local map for the identifier, if owned here.
func (r *MapRegistry) Lookup(identifier string) (*LocalMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maps[canonical(identifier)]
	return m, ok
}

// All returns the registered maps in unspecified order.
func (r *MapRegistry) All() []*LocalMap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*LocalMap, 0, len(r.maps))
	for _, m := range r.maps {
		out = append(out, m)
	}
	return out
}

// Len returns the number of registered maps.
func (r *MapRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.maps)
}

// ArenaRegistry is the per-process index of locally owned arenas.
type ArenaRegistry struct {
	mu     sync.RWMutex
	arenas map[string]*LocalArena
}

// NewArenaRegistry creates an empty registry.
func NewArenaRegistry() *ArenaRegistry {
	return &ArenaRegistry{arenas: make(map[string]*LocalArena)}
}

// Register adds a local arena. Registering an identifier twice fails.
func (r *ArenaRegistry) Register(a *LocalArena) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canonical(a.Identifier())
	if _, exists := r.arenas[key]; exists {
		return oops.Code("ALREADY_REGISTERED").
			With("identifier", a.Identifier()).
			Wrap(ErrAlreadyRegistered)
	}
	r.arenas[key] = a
	return nil
}

// Unregister removes the identifier. Unknown identifiers are a no-op.
func (r *ArenaRegistry) Unregister(identifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.arenas, canonical(identifier))
}

// Lookup returns the local arena for the identifier, if owned here.
func (r *ArenaRegistry) Lookup(identifier string) (*LocalArena, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.arenas[canonical(identifier)]
	return a, ok
}

// All returns the registered arenas in unspecified order.
func (r *ArenaRegistry) All() []*LocalArena {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*LocalArena, 0, len(r.arenas))
	for _, a := range r.arenas {
		out = append(out, a)
	}
	return out
}

// Len returns the number of registered arenas.
func (r *ArenaRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.arenas)
}
