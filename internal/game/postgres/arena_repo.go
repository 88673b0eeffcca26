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

// ArenaRepository implements game.ArenaRepository using PostgreSQL.
// The arena identifier is stored split into its component filters so
// natural-key lookups stay index-friendly.
type ArenaRepository struct {
	pool poolIface
}

// NewArenaRepository creates a new ArenaRepository.
func NewArenaRepository(pool poolIface) *ArenaRepository {
	return &ArenaRepository{pool: pool}
}

const arenaColumns = `server_name, game, map_name, world, group_id, created_at`

// Get returns the arena matching the natural key, or game.ErrNotFound.
func (r *ArenaRepository) Get(ctx context.Context, id game.ArenaID) (*game.Arena, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+arenaColumns+`
		FROM arenas
		WHERE lower(server_name) = lower($1) AND lower(game) = lower($2)
		  AND lower(map_name) = lower($3) AND lower(world) = lower($4)
	`, id.Map.Server, id.Map.Game, id.Map.Name, id.World)

	a, err := scanArenaRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ARENA_NOT_FOUND").With("identifier", id.String()).Wrap(game.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get arena").With("identifier", id.String()).Wrap(err)
	}
	return a, nil
}

// Insert persists a new arena record.
func (r *ArenaRepository) Insert(ctx context.Context, a *game.Arena) error {
	return insertArena(ctx, r.pool, a)
}

// Save atomically replaces the record matching the natural key:
// delete-then-insert inside one transaction, so a failure between the
// two leaves the old record in place.
func (r *ArenaRepository) Save(ctx context.Context, a *game.Arena) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.With("operation", "save arena").With("identifier", a.ID.String()).Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := removeArenas(ctx, tx, a.ID); err != nil {
		return err
	}
	if err := insertArena(ctx, tx, a); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.With("operation", "save arena").With("identifier", a.ID.String()).Wrap(err)
	}
	return nil
}

// RemoveAll deletes every record matching the natural key.
func (r *ArenaRepository) RemoveAll(ctx context.Context, id game.ArenaID) error {
	return removeArenas(ctx, r.pool, id)
}

func insertArena(ctx context.Context, db execer, a *game.Arena) error {
	var groupID *string
	if a.GroupID != nil {
		s := a.GroupID.String()
		groupID = &s
	}

	_, err := db.Exec(ctx, `
		INSERT INTO arenas (`+arenaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID.Map.Server, a.ID.Map.Game, a.ID.Map.Name, a.ID.World, groupID, a.CreatedAt)
	if err != nil {
		return oops.With("operation", "insert arena").With("identifier", a.ID.String()).Wrap(err)
	}
	return nil
}

func removeArenas(ctx context.Context, db execer, id game.ArenaID) error {
	_, err := db.Exec(ctx, `
		DELETE FROM arenas
		WHERE lower(server_name) = lower($1) AND lower(game) = lower($2)
		  AND lower(map_name) = lower($3) AND lower(world) = lower($4)
	`, id.Map.Server, id.Map.Game, id.Map.Name, id.World)
	if err != nil {
		return oops.With("operation", "remove arenas").With("identifier", id.String()).Wrap(err)
	}
	return nil
}

// ListByServer returns all arenas hosted by a server.
func (r *ArenaRepository) ListByServer(ctx context.Context, server string) ([]*game.Arena, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+arenaColumns+`
		FROM arenas
		WHERE lower(server_name) = lower($1)
		ORDER BY game, map_name, world
	`, server)
	if err != nil {
		return nil, oops.With("operation", "list arenas").With("server", server).Wrap(err)
	}
	defer rows.Close()

	var out []*game.Arena
	for rows.Next() {
		a, err := scanArenaRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan arena row").Wrap(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate arenas").Wrap(err)
	}
	return out, nil
}

// scanArenaRow hydrates one arena record.
func scanArenaRow(row pgx.Row) (*game.Arena, error) {
	var a game.Arena
	var groupID *string

	err := row.Scan(&a.ID.Map.Server, &a.ID.Map.Game, &a.ID.Map.Name, &a.ID.World, &groupID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if groupID != nil {
		id, err := uuid.Parse(*groupID)
		if err != nil {
			return nil, oops.Code("RECORD_CORRUPT").
				With("group_id", *groupID).
				Wrapf(game.ErrRecordCorrupt, "parse group id")
		}
		a.GroupID = &id
	}
	return &a, nil
}
