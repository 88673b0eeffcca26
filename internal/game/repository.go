// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"context"

	"github.com/google/uuid"
)

// Repositories are keyed by natural keys, not surrogate IDs. Insert is
// not an upsert: duplicate natural keys are the caller's fault. Saves
// go through Save, which replaces the record atomically. With one
// owning process per key the store stays single-writer-per-key.

// MapRepository persists map templates.
type MapRepository interface {
	// Get returns the map for the identifier, or ErrNotFound.
	Get(ctx context.Context, id MapID) (*Map, error)

	// Insert persists a new map record.
	Insert(ctx context.Context, m *Map) error

	// Save atomically replaces the record matching the identifier.
	Save(ctx context.Context, m *Map) error

	// RemoveAll deletes every record matching the identifier.
	RemoveAll(ctx context.Context, id MapID) error

	// List returns all maps for a server and game. An empty gameID
	// matches every game. Records whose encoded fields fail to
	// decode are skipped, not fatal.
	List(ctx context.Context, server, gameID string) ([]*Map, error)
}

// ArenaRepository persists arena records.
type ArenaRepository interface {
	Get(ctx context.Context, id ArenaID) (*Arena, error)
	Insert(ctx context.Context, a *Arena) error

	// Save atomically replaces the record matching the identifier.
	Save(ctx context.Context, a *Arena) error

	RemoveAll(ctx context.Context, id ArenaID) error

	// ListByServer returns all arenas hosted by a server.
	ListByServer(ctx context.Context, server string) ([]*Arena, error)
}

// GroupRepository persists queued groups.
type GroupRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Group, error)
	Insert(ctx context.Context, g *Group) error
	RemoveAll(ctx context.Context, id uuid.UUID) error
}

// MemberRepository persists members.
type MemberRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByName(ctx context.Context, name string) (*Member, error)
	Insert(ctx context.Context, m *Member) error
	RemoveAll(ctx context.Context, id uuid.UUID) error
}
