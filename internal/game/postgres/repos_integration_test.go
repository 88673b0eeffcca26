// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/playgrid/playgrid/internal/game"
	gamepg "github.com/playgrid/playgrid/internal/game/postgres"
	"github.com/playgrid/playgrid/internal/platform"
	"github.com/playgrid/playgrid/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container with the schema
// migrated, returning a connected pool.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("playgrid_test"),
		pgcontainer.WithUsername("playgrid"),
		pgcontainer.WithPassword("playgrid"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}
	return pool, cleanup, nil
}

var _ = Describe("Repositories", func() {
	var (
		ctx     context.Context
		pool    *pgxpool.Pool
		cleanup func()
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("MapRepository", func() {
		var repo *gamepg.MapRepository

		BeforeEach(func() {
			repo = gamepg.NewMapRepository(pool)
		})

		It("round-trips nested fields", func() {
			m := &game.Map{
				ID:        game.NewMapID("lobby-1", "bedwars", "aztec"),
				Schematic: &game.Schematic{File: "aztec.schem", OffsetY: -1},
				Capacity:  game.Capacity{2, 4},
				Spawn:     &platform.Position{X: 8, Y: 64, Z: 8, Yaw: 90},
				CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			}
			Expect(repo.Insert(ctx, m)).To(Succeed())

			got, err := repo.Get(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Schematic).To(Equal(m.Schematic))
			Expect(got.Capacity).To(Equal(m.Capacity))
			Expect(got.Spawn).To(Equal(m.Spawn))
			Expect(got.DisplayItem).To(BeNil())
		})

		It("reports absent identifiers as not found", func() {
			_, err := repo.Get(ctx, game.NewMapID("lobby-1", "bedwars", "missing"))
			Expect(err).To(MatchError(game.ErrNotFound))
		})

		It("replaces the record on save without duplicating it", func() {
			m := &game.Map{
				ID:        game.NewMapID("lobby-1", "bedwars", "aztec"),
				Capacity:  game.Capacity{2},
				CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			}
			Expect(repo.Insert(ctx, m)).To(Succeed())

			m.Capacity = game.Capacity{2, 4, 8}
			Expect(repo.Save(ctx, m)).To(Succeed())

			got, err := repo.Get(ctx, m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Capacity).To(Equal(game.Capacity{2, 4, 8}))

			maps, err := repo.List(ctx, "lobby-1", "bedwars")
			Expect(err).NotTo(HaveOccurred())
			Expect(maps).To(HaveLen(1), "save replaced the record instead of adding one")
		})

		It("matches identifiers case-insensitively", func() {
			m := &game.Map{
				ID:        game.NewMapID("lobby-1", "bedwars", "Aztec"),
				CreatedAt: time.Now().UTC(),
			}
			Expect(repo.Insert(ctx, m)).To(Succeed())

			got, err := repo.Get(ctx, game.NewMapID("LOBBY-1", "BedWars", "aztec"))
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID.Name).To(Equal("Aztec"))
		})

		It("lists every game when the filter is empty", func() {
			for _, g := range []string{"bedwars", "skywars"} {
				Expect(repo.Insert(ctx, &game.Map{
					ID:        game.NewMapID("lobby-1", g, "aztec"),
					CreatedAt: time.Now().UTC(),
				})).To(Succeed())
			}

			maps, err := repo.List(ctx, "lobby-1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(maps).To(HaveLen(2))
		})

		It("removes every record for the identifier", func() {
			m := &game.Map{ID: game.NewMapID("lobby-1", "bedwars", "aztec"), CreatedAt: time.Now().UTC()}
			Expect(repo.Insert(ctx, m)).To(Succeed())
			Expect(repo.RemoveAll(ctx, m.ID)).To(Succeed())

			_, err := repo.Get(ctx, m.ID)
			Expect(err).To(MatchError(game.ErrNotFound))
		})
	})

	Describe("ArenaRepository", func() {
		var repo *gamepg.ArenaRepository

		BeforeEach(func() {
			repo = gamepg.NewArenaRepository(pool)
		})

		It("persists the group assignment", func() {
			groupID := uuid.New()
			a := &game.Arena{
				ID:        game.NewArenaID(game.NewMapID("games-2", "bedwars", "aztec"), "aztec-1"),
				GroupID:   &groupID,
				CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			}
			Expect(repo.Insert(ctx, a)).To(Succeed())

			got, err := repo.Get(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.GroupID).NotTo(BeNil())
			Expect(*got.GroupID).To(Equal(groupID))
		})

		It("clears the assignment on save", func() {
			groupID := uuid.New()
			a := &game.Arena{
				ID:        game.NewArenaID(game.NewMapID("games-2", "bedwars", "aztec"), "aztec-1"),
				GroupID:   &groupID,
				CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			}
			Expect(repo.Insert(ctx, a)).To(Succeed())

			a.GroupID = nil
			Expect(repo.Save(ctx, a)).To(Succeed())

			got, err := repo.Get(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.GroupID).To(BeNil())

			arenas, err := repo.ListByServer(ctx, "games-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(arenas).To(HaveLen(1))
		})
	})

	Describe("GroupRepository", func() {
		It("preserves member order", func() {
			repo := gamepg.NewGroupRepository(pool)
			members := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
			g := &game.Group{
				ID:        uuid.New(),
				Game:      "bedwars",
				Members:   members,
				CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			}
			Expect(repo.Insert(ctx, g)).To(Succeed())

			got, err := repo.Get(ctx, g.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Members).To(Equal(members))
		})
	})

	Describe("MemberRepository", func() {
		It("resolves names case-insensitively", func() {
			repo := gamepg.NewMemberRepository(pool)
			m := &game.Member{ID: uuid.New(), Name: "Steve", Server: "lobby-1"}
			Expect(repo.Insert(ctx, m)).To(Succeed())

			got, err := repo.GetByName(ctx, "steve")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(m.ID))
			Expect(got.Server).To(Equal("lobby-1"))
		})
	})
})
