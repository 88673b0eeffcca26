// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"context"

	"github.com/google/uuid"
)

// Every entity comes in two variants sharing one interface: a local
// instance, authoritative and mutated only by its hosting process, and
// a global proxy usable from any process. Proxy getters read the store
// fresh on every call; proxy mutators forward over the bus to the
// owning process.
//
// Mutators return an acknowledged flag alongside the error. Local
// instances always acknowledge. A proxy returns acknowledged false
// with a nil error when no process claimed the request before the bus
// timeout: the operation had no effect, which is a degraded outcome,
// not a failure. Callers that require success must check the flag.

// MapEntity is a local or global map.
type MapEntity interface {
	Identifier() string
	Attrs(ctx context.Context) (Map, error)
	Save(ctx context.Context, u MapUpdate) (bool, error)
	Remove(ctx context.Context) (bool, error)
}

// ArenaEntity is a local or global arena.
type ArenaEntity interface {
	Identifier() string
	Attrs(ctx context.Context) (Arena, error)
	CreateWorld(ctx context.Context) (bool, error)
	Activate(ctx context.Context, groupID uuid.UUID) (bool, error)
	Deactivate(ctx context.Context) (bool, error)
	Remove(ctx context.Context) (bool, error)
}
