// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// In-memory repositories for tests and single-node deployments. They
// honor the same contracts as the PostgreSQL implementations: Get
// returns ErrNotFound for absent keys, Insert never upserts.

// MemoryMapRepository implements MapRepository in memory.
type MemoryMapRepository struct {
	mu   sync.RWMutex
	recs map[string]Map
}

// NewMemoryMapRepository creates an empty repository.
func NewMemoryMapRepository() *MemoryMapRepository {
	return &MemoryMapRepository{recs: make(map[string]Map)}
}

// Get implements MapRepository.
func (r *MemoryMapRepository) Get(_ context.Context, id MapID) (*Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[canonical(id.String())]
	if !ok {
		return nil, oops.Code("MAP_NOT_FOUND").With("identifier", id.String()).Wrap(ErrNotFound)
	}
	out := rec
	return &out, nil
}

// Insert implements MapRepository.
func (r *MemoryMapRepository) Insert(_ context.Context, m *Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[canonical(m.ID.String())] = *m
	return nil
}

// Save implements MapRepository. Map assignment replaces atomically.
func (r *MemoryMapRepository) Save(_ context.Context, m *Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[canonical(m.ID.String())] = *m
	return nil
}

// RemoveAll implements MapRepository.
func (r *MemoryMapRepository) RemoveAll(_ context.Context, id MapID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, canonical(id.String()))
	return nil
}

// List implements MapRepository.
func (r *MemoryMapRepository) List(_ context.Context, server, gameID string) ([]*Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Map
	for _, rec := range r.recs {
		if strings.EqualFold(rec.ID.Server, server) && (gameID == "" || strings.EqualFold(rec.ID.Game, gameID)) {
			cp := rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MemoryArenaRepository implements ArenaRepository in memory.
type MemoryArenaRepository struct {
	mu   sync.RWMutex
	recs map[string]Arena
}

// NewMemoryArenaRepository creates an empty repository.
func NewMemoryArenaRepository() *MemoryArenaRepository {
	return &MemoryArenaRepository{recs: make(map[string]Arena)}
}

// Get implements ArenaRepository.
func (r *MemoryArenaRepository) Get(_ context.Context, id ArenaID) (*Arena, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[canonical(id.String())]
	if !ok {
		return nil, oops.Code("ARENA_NOT_FOUND").With("identifier", id.String()).Wrap(ErrNotFound)
	}
	out := rec
	return &out, nil
}

// Insert implements ArenaRepository.
func (r *MemoryArenaRepository) Insert(_ context.Context, a *Arena) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[canonical(a.ID.String())] = *a
	return nil
}

// Save implements ArenaRepository. Map assignment replaces atomically.
func (r *MemoryArenaRepository) Save(_ context.Context, a *Arena) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[canonical(a.ID.String())] = *a
	return nil
}

// RemoveAll implements ArenaRepository.
func (r *MemoryArenaRepository) RemoveAll(_ context.Context, id ArenaID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, canonical(id.String()))
	return nil
}

// ListByServer implements ArenaRepository.
func (r *MemoryArenaRepository) ListByServer(_ context.Context, server string) ([]*Arena, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Arena
	for _, rec := range r.recs {
		if strings.EqualFold(rec.ID.Map.Server, server) {
			cp := rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MemoryGroupRepository implements GroupRepository in memory.
type MemoryGroupRepository struct {
	mu   sync.RWMutex
	recs map[uuid.UUID]Group
}

// NewMemoryGroupRepository creates an empty repository.
func NewMemoryGroupRepository() *MemoryGroupRepository {
	return &MemoryGroupRepository{recs: make(map[uuid.UUID]Group)}
}

// Get implements GroupRepository.
func (r *MemoryGroupRepository) Get(_ context.Context, id uuid.UUID) (*Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, oops.Code("GROUP_NOT_FOUND").With("group_id", id.String()).Wrap(ErrNotFound)
	}
	out := rec
	out.Members = append([]uuid.UUID(nil), rec.Members...)
	return &out, nil
}

// Insert implements GroupRepository.
func (r *MemoryGroupRepository) Insert(_ context.Context, g *Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *g
	rec.Members = append([]uuid.UUID(nil), g.Members...)
	r.recs[g.ID] = rec
	return nil
}

// RemoveAll implements GroupRepository.
func (r *MemoryGroupRepository) RemoveAll(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, id)
	return nil
}

// MemoryMemberRepository implements MemberRepository in memory.
type MemoryMemberRepository struct {
	mu   sync.RWMutex
	recs map[uuid.UUID]Member
}

// NewMemoryMemberRepository creates an empty repository.
func NewMemoryMemberRepository() *MemoryMemberRepository {
	return &MemoryMemberRepository{recs: make(map[uuid.UUID]Member)}
}

// Get implements MemberRepository.
func (r *MemoryMemberRepository) Get(_ context.Context, id uuid.UUID) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, oops.Code("MEMBER_NOT_FOUND").With("member_id", id.String()).Wrap(ErrNotFound)
	}
	out := rec
	return &out, nil
}

// GetByName implements MemberRepository.
func (r *MemoryMemberRepository) GetByName(_ context.Context, name string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.recs {
		if strings.EqualFold(rec.Name, name) {
			out := rec
			return &out, nil
		}
	}
	return nil, oops.Code("MEMBER_NOT_FOUND").With("name", name).Wrap(ErrNotFound)
}

// Insert implements MemberRepository.
func (r *MemoryMemberRepository) Insert(_ context.Context, m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[m.ID] = *m
	return nil
}

// RemoveAll implements MemberRepository.
func (r *MemoryMemberRepository) RemoveAll(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, id)
	return nil
}
