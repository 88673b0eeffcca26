// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package platform defines the capability interfaces the game core needs
// from the hosting game server. Implementations are injected at process
// start; the core never talks to the underlying engine directly.
package platform

import (
	"context"

	"github.com/google/uuid"
)

// Position is a point inside a named world.
type Position struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// WorldProvider creates and destroys worlds by name.
type WorldProvider interface {
	// EnsureWorld guarantees the named world exists on return.
	// Creating a world that already exists is a no-op.
	EnsureWorld(ctx context.Context, name string) error

	// DeleteWorld tears down the named world. Deleting a world that
	// does not exist is a no-op.
	DeleteWorld(ctx context.Context, name string) error
}

// Teleporter moves a connected member to a position.
type Teleporter interface {
	Teleport(ctx context.Context, member uuid.UUID, pos Position) error
}

// Presence answers whether a member is connected to this process.
type Presence interface {
	IsOnline(member uuid.UUID) bool
}

// Noop implements all capability interfaces with no-ops. Used by
// headless processes that host no worlds or players of their own.
type Noop struct{}

// EnsureWorld implements WorldProvider.
func (Noop) EnsureWorld(context.Context, string) error { return nil }

// DeleteWorld implements WorldProvider.
func (Noop) DeleteWorld(context.Context, string) error { return nil }

// Teleport implements Teleporter.
func (Noop) Teleport(context.Context, uuid.UUID, Position) error { return nil }

// IsOnline implements Presence. Always false.
func (Noop) IsOnline(uuid.UUID) bool { return false }
