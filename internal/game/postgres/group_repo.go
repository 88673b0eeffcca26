// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/playgrid/playgrid/internal/game"
)

// GroupRepository implements game.GroupRepository using PostgreSQL.
// The ordered member list is a JSONB array of UUID strings.
type GroupRepository struct {
	pool poolIface
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(pool poolIface) *GroupRepository {
	return &GroupRepository{pool: pool}
}

// Get returns the group for the UUID, or game.ErrNotFound.
func (r *GroupRepository) Get(ctx context.Context, id uuid.UUID) (*game.Group, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, game, members, created_at FROM groups WHERE id = $1
	`, id)

	var g game.Group
	var members []byte
	err := row.Scan(&g.ID, &g.Game, &members, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("GROUP_NOT_FOUND").With("group_id", id.String()).Wrap(game.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get group").With("group_id", id.String()).Wrap(err)
	}

	if err := decodeJSON(members, "members", &g.Members); err != nil {
		return nil, err
	}
	return &g, nil
}

// Insert persists a new group.
func (r *GroupRepository) Insert(ctx context.Context, g *game.Group) error {
	members, err := encodeJSON(g.Members)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO groups (id, game, members, created_at) VALUES ($1, $2, $3, $4)
	`, g.ID, g.Game, members, g.CreatedAt)
	if err != nil {
		return oops.With("operation", "insert group").With("group_id", g.ID.String()).Wrap(err)
	}
	return nil
}

// RemoveAll deletes every record for the UUID.
func (r *GroupRepository) RemoveAll(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "remove group").With("group_id", id.String()).Wrap(err)
	}
	return nil
}
