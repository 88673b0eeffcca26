// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"time"

	"github.com/google/uuid"
)

// ArenaState is a position in the arena lifecycle.
type ArenaState uint8

// Arena lifecycle states. Created arenas have no world yet; Removed is
// terminal.
const (
	StateCreated ArenaState = iota
	StateWorldBuilt
	StateActivated
	StateDeactivated
	StateRemoved
)

func (s ArenaState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateWorldBuilt:
		return "world_built"
	case StateActivated:
		return "activated"
	case StateDeactivated:
		return "deactivated"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Arena is a map instantiated into a concrete world on a concrete
// server. GroupID is the group currently occupying it, if any.
type Arena struct {
	ID        ArenaID
	GroupID   *uuid.UUID
	CreatedAt time.Time
}
