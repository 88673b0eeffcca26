// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package platformtest provides recording fakes for the platform
// capability interfaces.
package platformtest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/playgrid/playgrid/internal/platform"
)

// Teleport records a single teleport call.
type Teleport struct {
	Member uuid.UUID
	Pos    platform.Position
}

// Recorder implements WorldProvider, Teleporter and Presence, recording
// every call. Worlds behave like a real provider: EnsureWorld is
// idempotent and DeleteWorld removes the world.
type Recorder struct {
	mu        sync.Mutex
	worlds    map[string]bool
	ensures   int
	teleports []Teleport
	online    map[uuid.UUID]bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		worlds: make(map[string]bool),
		online: make(map[uuid.UUID]bool),
	}
}

// EnsureWorld implements platform.WorldProvider.
func (r *Recorder) EnsureWorld(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensures++
	r.worlds[name] = true
	return nil
}

// DeleteWorld implements platform.WorldProvider.
func (r *Recorder) DeleteWorld(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.worlds, name)
	return nil
}

// Teleport implements platform.Teleporter.
func (r *Recorder) Teleport(_ context.Context, member uuid.UUID, pos platform.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teleports = append(r.teleports, Teleport{Member: member, Pos: pos})
	return nil
}

// IsOnline implements platform.Presence.
func (r *Recorder) IsOnline(member uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online[member]
}

// SetOnline marks a member as connected to this process.
func (r *Recorder) SetOnline(member uuid.UUID, online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[member] = online
}

// HasWorld reports whether the named world currently exists.
func (r *Recorder) HasWorld(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.worlds[name]
}

// EnsureCalls returns how many times EnsureWorld was called.
func (r *Recorder) EnsureCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensures
}

// Teleports returns a copy of all recorded teleport calls.
func (r *Recorder) Teleports() []Teleport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Teleport, len(r.teleports))
	copy(out, r.teleports)
	return out
}
