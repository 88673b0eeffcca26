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

// MemberRepository implements game.MemberRepository using PostgreSQL.
type MemberRepository struct {
	pool poolIface
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool poolIface) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// Get returns the member for the UUID, or game.ErrNotFound.
func (r *MemberRepository) Get(ctx context.Context, id uuid.UUID) (*game.Member, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, server_name FROM members WHERE id = $1
	`, id)
	return scanMember(row, "member_id", id.String())
}

// GetByName returns the member with the display name, or
// game.ErrNotFound. Names are matched case-insensitively.
func (r *MemberRepository) GetByName(ctx context.Context, name string) (*game.Member, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, server_name FROM members WHERE lower(name) = lower($1)
	`, name)
	return scanMember(row, "name", name)
}

// Insert persists a new member record.
func (r *MemberRepository) Insert(ctx context.Context, m *game.Member) error {
	var server *string
	if m.Server != "" {
		server = &m.Server
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO members (id, name, server_name) VALUES ($1, $2, $3)
	`, m.ID, m.Name, server)
	if err != nil {
		return oops.With("operation", "insert member").With("member_id", m.ID.String()).Wrap(err)
	}
	return nil
}

// RemoveAll deletes every record for the UUID.
func (r *MemberRepository) RemoveAll(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "remove member").With("member_id", id.String()).Wrap(err)
	}
	return nil
}

func scanMember(row pgx.Row, keyField, keyValue string) (*game.Member, error) {
	var m game.Member
	var server *string

	err := row.Scan(&m.ID, &m.Name, &server)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MEMBER_NOT_FOUND").With(keyField, keyValue).Wrap(game.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "scan member").With(keyField, keyValue).Wrap(err)
	}
	if server != nil {
		m.Server = *server
	}
	return &m, nil
}
