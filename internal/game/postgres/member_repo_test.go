// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgrid/playgrid/internal/game"
)

var memberCols = []string{"id", "name", "server_name"}

func TestMemberRepository_Get(t *testing.T) {
	memberID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		check     func(t *testing.T, m *game.Member, err error)
	}{
		{
			name: "found online",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				server := "games-2"
				rows := pgxmock.NewRows(memberCols).AddRow(memberID, "Steve", &server)
				mock.ExpectQuery(`SELECT .* FROM members WHERE id`).
					WithArgs(memberID).
					WillReturnRows(rows)
			},
			check: func(t *testing.T, m *game.Member, err error) {
				require.NoError(t, err)
				assert.Equal(t, "Steve", m.Name)
				assert.Equal(t, "games-2", m.Server)
			},
		},
		{
			name: "found offline has empty server",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(memberCols).AddRow(memberID, "Steve", nil)
				mock.ExpectQuery(`SELECT .* FROM members WHERE id`).
					WithArgs(memberID).
					WillReturnRows(rows)
			},
			check: func(t *testing.T, m *game.Member, err error) {
				require.NoError(t, err)
				assert.Empty(t, m.Server)
			},
		},
		{
			name: "not found maps to sentinel",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM members WHERE id`).
					WithArgs(memberID).
					WillReturnRows(pgxmock.NewRows(memberCols))
			},
			check: func(t *testing.T, _ *game.Member, err error) {
				assert.ErrorIs(t, err, game.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewMemberRepository(mock)
			m, err := repo.Get(context.Background(), memberID)
			tt.check(t, m, err)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMemberRepository_GetByName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	memberID := uuid.New()
	rows := pgxmock.NewRows(memberCols).AddRow(memberID, "Steve", nil)
	mock.ExpectQuery(`SELECT .* FROM members WHERE lower\(name\)`).
		WithArgs("steve").
		WillReturnRows(rows)

	repo := NewMemberRepository(mock)
	m, err := repo.GetByName(context.Background(), "steve")
	require.NoError(t, err)
	assert.Equal(t, memberID, m.ID)
	assert.Equal(t, "Steve", m.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_InsertAndRemove(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	memberID := uuid.New()

	// Offline members persist a NULL server so presence reads stay honest.
	mock.ExpectExec(`INSERT INTO members`).
		WithArgs(memberID, "Steve", (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM members`).
		WithArgs(memberID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewMemberRepository(mock)
	require.NoError(t, repo.Insert(context.Background(), &game.Member{ID: memberID, Name: "Steve"}))
	require.NoError(t, repo.RemoveAll(context.Background(), memberID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
