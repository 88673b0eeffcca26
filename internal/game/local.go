// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// LocalMap is the authoritative instance of a map, owned by the
// process that created or loaded it. Saves are write-through: the
// record is replaced in the store inside Save.
type LocalMap struct {
	net *Network

	mu      sync.Mutex
	rec     Map
	removed bool
}

// Identifier implements MapEntity.
func (m *LocalMap) Identifier() string {
	return m.rec.ID.String()
}

// Attrs returns a copy of the current attributes.
func (m *LocalMap) Attrs(_ context.Context) (Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return Map{}, oops.Code("MAP_NOT_FOUND").
			With("identifier", m.rec.ID.String()).
			Wrapf(ErrNotFound, "map %s no longer exists", m.rec.ID)
	}
	return m.rec, nil
}

// Save applies the update and writes the record through to the store.
func (m *LocalMap) Save(ctx context.Context, u MapUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return false, oops.Code("MAP_NOT_FOUND").
			With("identifier", m.rec.ID.String()).
			Wrap(ErrNotFound)
	}

	u.apply(&m.rec)

	if err := m.net.maps.Save(ctx, &m.rec); err != nil {
		return false, oops.With("identifier", m.rec.ID.String()).Wrap(err)
	}
	return true, nil
}

// Remove unregisters the map and deletes its persisted record.
// Terminal: further operations fail with ErrNotFound.
func (m *LocalMap) Remove(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return false, oops.Code("MAP_NOT_FOUND").
			With("identifier", m.rec.ID.String()).
			Wrap(ErrNotFound)
	}

	if err := m.net.maps.RemoveAll(ctx, m.rec.ID); err != nil {
		return false, oops.With("identifier", m.rec.ID.String()).Wrap(err)
	}
	m.net.mapRegistry.Unregister(m.rec.ID.String())
	m.removed = true
	return true, nil
}

// LocalArena is the authoritative instance of an arena. Only the
// owning process runs the state machine; remote processes request
// transitions through a GlobalArena proxy.
type LocalArena struct {
	net *Network

	mu      sync.Mutex
	rec     Arena
	state   ArenaState
	removed bool
}

// Identifier implements ArenaEntity.
func (a *LocalArena) Identifier() string {
	return a.rec.ID.String()
}

// State returns the current lifecycle state.
func (a *LocalArena) State() ArenaState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Attrs returns a copy of the current attributes.
func (a *LocalArena) Attrs(_ context.Context) (Arena, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkRemoved(); err != nil {
		return Arena{}, err
	}
	return a.rec, nil
}

// CreateWorld guarantees the arena's world exists on return.
// Idempotent: creating a world that already exists is a no-op
// returning success.
func (a *LocalArena) CreateWorld(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.createWorldLocked(ctx)
}

func (a *LocalArena) createWorldLocked(ctx context.Context) (bool, error) {
	if err := a.checkRemoved(); err != nil {
		return false, err
	}

	if err := a.net.world.EnsureWorld(ctx, a.rec.ID.World); err != nil {
		return false, oops.Code("WORLD_CREATE_FAILED").
			With("world", a.rec.ID.World).
			Wrap(err)
	}
	if a.state == StateCreated || a.state == StateDeactivated {
		a.state = StateWorldBuilt
	}
	return true, nil
}

// Activate assigns the group, persists the assignment, registers a
// session and teleports every member of the group to the map's spawn
// point in this arena's world.
func (a *LocalArena) Activate(ctx context.Context, groupID uuid.UUID) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkRemoved(); err != nil {
		return false, err
	}
	if a.state == StateActivated {
		return false, oops.Code("ARENA_ALREADY_ACTIVE").
			With("identifier", a.rec.ID.String()).
			Wrap(ErrAlreadyActive)
	}

	group, err := a.net.groups.Get(ctx, groupID)
	if err != nil {
		return false, oops.Code("GROUP_NOT_FOUND").
			With("group_id", groupID.String()).
			Wrapf(ErrGroupNotFound, "group %s", groupID)
	}

	mapRec, err := a.net.maps.Get(ctx, a.rec.ID.Map)
	if err != nil {
		return false, oops.Code("MAP_NOT_FOUND").
			With("identifier", a.rec.ID.Map.String()).
			Wrap(err)
	}
	if mapRec.Spawn == nil {
		return false, oops.Code("SPAWN_UNDEFINED").
			With("identifier", a.rec.ID.Map.String()).
			Wrap(ErrSpawnUndefined)
	}
	if !mapRec.Capacity.Admits(group.Size()) {
		slog.Warn("group size not in map capacity",
			"arena", a.rec.ID.String(),
			"group", groupID.String(),
			"size", group.Size(),
		)
	}

	if _, err := a.createWorldLocked(ctx); err != nil {
		return false, err
	}

	session := NewSession(a.rec.ID, groupID)
	if err := a.net.sessions.Register(session); err != nil {
		return false, err
	}

	gid := groupID
	a.rec.GroupID = &gid
	if err := a.save(ctx); err != nil {
		a.net.sessions.Stop(a.rec.ID.String())
		a.rec.GroupID = nil
		return false, err
	}

	spawn := *mapRec.Spawn
	spawn.World = a.rec.ID.World
	for _, member := range group.Members {
		a.net.requestTeleport(ctx, member, spawn)
	}

	a.state = StateActivated
	slog.Info("arena activated",
		"identifier", a.rec.ID.String(),
		"group", groupID.String(),
		"members", group.Size(),
	)
	return true, nil
}

// Deactivate stops any running session, clears the group assignment
// and tears down the world. Deactivating an arena with no running
// session is a no-op, not an error.
func (a *LocalArena) Deactivate(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkRemoved(); err != nil {
		return false, err
	}

	a.net.sessions.Stop(a.rec.ID.String())

	if err := a.net.world.DeleteWorld(ctx, a.rec.ID.World); err != nil {
		return false, oops.Code("WORLD_DELETE_FAILED").
			With("world", a.rec.ID.World).
			Wrap(err)
	}

	if a.rec.GroupID != nil {
		a.rec.GroupID = nil
		if err := a.save(ctx); err != nil {
			return false, err
		}
	}
	a.state = StateDeactivated
	return true, nil
}

// Remove unregisters the arena and deletes its persisted record.
// Terminal: any further operation fails with ErrNotFound.
func (a *LocalArena) Remove(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkRemoved(); err != nil {
		return false, err
	}

	a.net.sessions.Stop(a.rec.ID.String())
	if err := a.net.arenas.RemoveAll(ctx, a.rec.ID); err != nil {
		return false, oops.With("identifier", a.rec.ID.String()).Wrap(err)
	}
	a.net.arenaRegistry.Unregister(a.rec.ID.String())
	a.state = StateRemoved
	a.removed = true
	return true, nil
}

// save replaces the arena record in the store.
func (a *LocalArena) save(ctx context.Context) error {
	if err := a.net.arenas.Save(ctx, &a.rec); err != nil {
		return oops.With("identifier", a.rec.ID.String()).Wrap(err)
	}
	return nil
}

func (a *LocalArena) checkRemoved() error {
	if a.removed {
		return oops.Code("ARENA_NOT_FOUND").
			With("identifier", a.rec.ID.String()).
			Wrapf(ErrNotFound, "arena %s no longer exists", a.rec.ID)
	}
	return nil
}
