// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/playgrid/playgrid/internal/game"
	"github.com/playgrid/playgrid/internal/platform"
)

// MapRepository implements game.MapRepository using PostgreSQL.
type MapRepository struct {
	pool poolIface
}

// NewMapRepository creates a new MapRepository.
func NewMapRepository(pool poolIface) *MapRepository {
	return &MapRepository{pool: pool}
}

const mapColumns = `server_name, game, name, schematic, capacity, display_item, spawn, created_at`

// Get returns the map matching the natural key, or game.ErrNotFound.
func (r *MapRepository) Get(ctx context.Context, id game.MapID) (*game.Map, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+mapColumns+`
		FROM maps
		WHERE lower(server_name) = lower($1) AND lower(game) = lower($2) AND lower(name) = lower($3)
	`, id.Server, id.Game, id.Name)

	m, err := scanMapRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MAP_NOT_FOUND").With("identifier", id.String()).Wrap(game.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get map").With("identifier", id.String()).Wrap(err)
	}
	return m, nil
}

// Insert persists a new map record. Not an upsert: callers replace an
// existing natural key through Save.
func (r *MapRepository) Insert(ctx context.Context, m *game.Map) error {
	return insertMap(ctx, r.pool, m)
}

// Save atomically replaces the record matching the natural key:
// delete-then-insert inside one transaction, so a failure between the
// two leaves the old record in place.
func (r *MapRepository) Save(ctx context.Context, m *game.Map) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.With("operation", "save map").With("identifier", m.ID.String()).Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := removeMaps(ctx, tx, m.ID); err != nil {
		return err
	}
	if err := insertMap(ctx, tx, m); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.With("operation", "save map").With("identifier", m.ID.String()).Wrap(err)
	}
	return nil
}

// RemoveAll deletes every record matching the natural key.
func (r *MapRepository) RemoveAll(ctx context.Context, id game.MapID) error {
	return removeMaps(ctx, r.pool, id)
}

func insertMap(ctx context.Context, db execer, m *game.Map) error {
	schematic, err := encodeJSON(optional(m.Schematic))
	if err != nil {
		return err
	}
	capacity, err := encodeJSON(optionalSlice(m.Capacity))
	if err != nil {
		return err
	}
	item, err := encodeJSON(optional(m.DisplayItem))
	if err != nil {
		return err
	}
	spawn, err := encodeJSON(optional(m.Spawn))
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO maps (`+mapColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID.Server, m.ID.Game, m.ID.Name, schematic, capacity, item, spawn, m.CreatedAt)
	if err != nil {
		return oops.With("operation", "insert map").With("identifier", m.ID.String()).Wrap(err)
	}
	return nil
}

func removeMaps(ctx context.Context, db execer, id game.MapID) error {
	_, err := db.Exec(ctx, `
		DELETE FROM maps
		WHERE lower(server_name) = lower($1) AND lower(game) = lower($2) AND lower(name) = lower($3)
	`, id.Server, id.Game, id.Name)
	if err != nil {
		return oops.With("operation", "remove maps").With("identifier", id.String()).Wrap(err)
	}
	return nil
}

// List returns all maps for a server and game. An empty gameID matches
// every game. A record whose encoded fields fail to decode is skipped
// and logged, not fatal to the query.
func (r *MapRepository) List(ctx context.Context, server, gameID string) ([]*game.Map, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+mapColumns+`
		FROM maps
		WHERE lower(server_name) = lower($1) AND ($2 = '' OR lower(game) = lower($2))
		ORDER BY name
	`, server, gameID)
	if err != nil {
		return nil, oops.With("operation", "list maps").With("server", server).With("game", gameID).Wrap(err)
	}
	defer rows.Close()

	var out []*game.Map
	for rows.Next() {
		m, err := scanMapRow(rows)
		if errors.Is(err, game.ErrRecordCorrupt) {
			slog.Warn("skipping corrupt map record", "server", server, "game", gameID, "error", err)
			continue
		}
		if err != nil {
			return nil, oops.With("operation", "scan map row").Wrap(err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate maps").Wrap(err)
	}
	return out, nil
}

// scanMapRow hydrates one map record, decoding the JSONB fields.
func scanMapRow(row pgx.Row) (*game.Map, error) {
	var m game.Map
	var schematic, capacity, item, spawn []byte

	err := row.Scan(&m.ID.Server, &m.ID.Game, &m.ID.Name, &schematic, &capacity, &item, &spawn, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if schematic != nil {
		m.Schematic = &game.Schematic{}
		if err := decodeJSON(schematic, "schematic", m.Schematic); err != nil {
			return nil, err
		}
	}
	if err := decodeJSON(capacity, "capacity", &m.Capacity); err != nil {
		return nil, err
	}
	if item != nil {
		m.DisplayItem = &game.DisplayItem{}
		if err := decodeJSON(item, "display_item", m.DisplayItem); err != nil {
			return nil, err
		}
	}
	if spawn != nil {
		m.Spawn = &platform.Position{}
		if err := decodeJSON(spawn, "spawn", m.Spawn); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// optional boxes a typed nil pointer into an untyped nil for encodeJSON.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}

// optionalSlice boxes a nil slice into an untyped nil for encodeJSON.
func optionalSlice[S ~[]E, E any](s S) any {
	if s == nil {
		return nil
	}
	return s
}
