// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// GlobalMap is a cross-process view of a map that owns no state:
// every getter is a fresh store read, every mutator a bus round trip.
type GlobalMap struct {
	net *Network
	id  MapID
}

// Identifier implements MapEntity.
func (m *GlobalMap) Identifier() string { return m.id.String() }

// Attrs reads the current record from the store. A deleted record
// fails with ErrNotFound.
func (m *GlobalMap) Attrs(ctx context.Context) (Map, error) {
	rec, err := m.net.maps.Get(ctx, m.id)
	if err != nil {
		return Map{}, oops.Code("MAP_NOT_FOUND").
			With("identifier", m.id.String()).
			Wrapf(err, "map %s no longer exists", m.id)
	}
	return *rec, nil
}

// Save forwards the update to the owning process.
func (m *GlobalMap) Save(ctx context.Context, u MapUpdate) (bool, error) {
	return m.net.dispatch(ctx, m.id.String(), OpMapSave, u)
}

// Remove forwards removal to the owning process.
func (m *GlobalMap) Remove(ctx context.Context) (bool, error) {
	return m.net.dispatch(ctx, m.id.String(), OpMapRemove, nil)
}

// GlobalArena is a cross-process view of an arena. State transitions
// requested through it run the state machine on the owning process.
type GlobalArena struct {
	net *Network
	id  ArenaID
}

// Identifier implements ArenaEntity.
func (a *GlobalArena) Identifier() string { return a.id.String() }

// Attrs reads the current record from the store.
func (a *GlobalArena) Attrs(ctx context.Context) (Arena, error) {
	rec, err := a.net.arenas.Get(ctx, a.id)
	if err != nil {
		return Arena{}, oops.Code("ARENA_NOT_FOUND").
			With("identifier", a.id.String()).
			Wrapf(err, "arena %s no longer exists", a.id)
	}
	return *rec, nil
}

// CreateWorld implements ArenaEntity.
func (a *GlobalArena) CreateWorld(ctx context.Context) (bool, error) {
	return a.net.dispatch(ctx, a.id.String(), OpArenaCreateWorld, nil)
}

// Activate implements ArenaEntity.
func (a *GlobalArena) Activate(ctx context.Context, groupID uuid.UUID) (bool, error) {
	return a.net.dispatch(ctx, a.id.String(), OpArenaActivate, ActivateArgs{GroupID: groupID})
}

// Deactivate implements ArenaEntity.
func (a *GlobalArena) Deactivate(ctx context.Context) (bool, error) {
	return a.net.dispatch(ctx, a.id.String(), OpArenaDeactivate, nil)
}

// Remove implements ArenaEntity.
func (a *GlobalArena) Remove(ctx context.Context) (bool, error) {
	return a.net.dispatch(ctx, a.id.String(), OpArenaRemove, nil)
}
