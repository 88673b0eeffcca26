// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package postgres implements the game repositories on PostgreSQL.
// Nested structured fields (schematic, capacity, display item, group
// membership) live in JSONB columns decoded on hydration, keeping the
// table schema stable while the nested shapes evolve per game type.
package postgres

import (
	"encoding/json"

	"github.com/samber/oops"

	"github.com/playgrid/playgrid/internal/game"
)

// encodeJSON marshals an optional nested value for a JSONB column.
// Nil stays NULL.
func encodeJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, oops.With("operation", "encode json field").Wrap(err)
	}
	return b, nil
}

// decodeJSON unmarshals an optional JSONB column into out. A NULL
// column leaves out untouched. A decode failure corrupts only this
// record: callers map it to game.ErrRecordCorrupt and list queries
// skip the record rather than aborting.
func decodeJSON(raw []byte, field string, out any) error {
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return oops.Code("RECORD_CORRUPT").
			With("field", field).
			Wrapf(game.ErrRecordCorrupt, "decode %s", field)
	}
	return nil
}
