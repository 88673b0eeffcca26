// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

//go:build integration

package network_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/playgrid/playgrid/internal/bus"
	"github.com/playgrid/playgrid/internal/game"
	"github.com/playgrid/playgrid/internal/platform"
	"github.com/playgrid/playgrid/internal/platform/platformtest"
)

// proc is one network process sharing the store and bus with its peers.
type proc struct {
	net *game.Network
	rec *platformtest.Recorder
}

var _ = Describe("Two-process network", func() {
	var (
		ctx    context.Context
		maps   *game.MemoryMapRepository
		games1 proc
		games2 proc
	)

	BeforeEach(func() {
		ctx = context.Background()

		maps = game.NewMemoryMapRepository()
		arenas := game.NewMemoryArenaRepository()
		groups := game.NewMemoryGroupRepository()
		members := game.NewMemoryMemberRepository()
		mb := bus.NewMemoryBus()

		start := func(server string) proc {
			rec := platformtest.NewRecorder()
			n, err := game.NewNetwork(game.Config{
				ServerName: server,
				Maps:       maps,
				Arenas:     arenas,
				Groups:     groups,
				Members:    members,
				Bus:        mb,
				World:      rec,
				Teleporter: rec,
				Presence:   rec,
			})
			Expect(err).NotTo(HaveOccurred())
			return proc{net: n, rec: rec}
		}

		games1 = start("games-1")
		games2 = start("games-2")
	})

	Describe("Map ownership", func() {
		It("resolves a foreign map to a proxy that reads the store", func() {
			_, err := games1.net.CreateMap(ctx, "bedwars", "aztec")
			Expect(err).NotTo(HaveOccurred())

			entity, err := games2.net.Map(ctx, "games-1:bedwars:aztec")
			Expect(err).NotTo(HaveOccurred())

			attrs, err := entity.Attrs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(attrs.ID.String()).To(Equal("games-1:bedwars:aztec"))
		})

		It("forwards a proxy save to the owning process", func() {
			local, err := games1.net.CreateMap(ctx, "bedwars", "aztec")
			Expect(err).NotTo(HaveOccurred())

			entity, err := games2.net.Map(ctx, "games-1:bedwars:aztec")
			Expect(err).NotTo(HaveOccurred())

			acked, err := entity.Save(ctx, game.MapUpdate{Capacity: game.Capacity{4}})
			Expect(err).NotTo(HaveOccurred())
			Expect(acked).To(BeTrue())

			attrs, err := local.Attrs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(attrs.Capacity).To(Equal(game.Capacity{4}))
		})

		It("leaves a save to an absent owner unacknowledged", func() {
			// The record exists but its hosting process is not on the bus.
			err := maps.Insert(ctx, &game.Map{ID: game.NewMapID("games-9", "bedwars", "aztec")})
			Expect(err).NotTo(HaveOccurred())

			entity, err := games2.net.Map(ctx, "games-9:bedwars:aztec")
			Expect(err).NotTo(HaveOccurred())

			acked, err := entity.Save(ctx, game.MapUpdate{Capacity: game.Capacity{4}})
			Expect(err).NotTo(HaveOccurred())
			Expect(acked).To(BeFalse())
		})

		It("propagates a remote removal everywhere", func() {
			_, err := games1.net.CreateMap(ctx, "bedwars", "aztec")
			Expect(err).NotTo(HaveOccurred())

			entity, err := games2.net.Map(ctx, "games-1:bedwars:aztec")
			Expect(err).NotTo(HaveOccurred())

			acked, err := entity.Remove(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(acked).To(BeTrue())

			_, err = games1.net.Map(ctx, "games-1:bedwars:aztec")
			Expect(err).To(MatchError(game.ErrNotFound))
		})
	})

	Describe("Arena lifecycle", func() {
		var (
			groupID uuid.UUID
			arena   game.ArenaEntity
		)

		BeforeEach(func() {
			local, err := games2.net.CreateMap(ctx, "bedwars", "aztec")
			Expect(err).NotTo(HaveOccurred())

			_, err = local.Save(ctx, game.MapUpdate{
				Capacity: game.Capacity{2},
				Spawn:    &platform.Position{X: 8, Y: 64, Z: 8},
			})
			Expect(err).NotTo(HaveOccurred())

			first := uuid.New()
			second := uuid.New()
			for _, id := range []uuid.UUID{first, second} {
				games2.rec.SetOnline(id, true)
			}

			group, err := games2.net.CreateGroup(ctx, "bedwars", []uuid.UUID{first, second})
			Expect(err).NotTo(HaveOccurred())
			groupID = group.ID

			mapID := game.NewMapID("games-2", "bedwars", "aztec")
			_, err = games2.net.CreateArena(ctx, mapID, "aztec-1")
			Expect(err).NotTo(HaveOccurred())

			// Drive the whole lifecycle through the remote proxy.
			arena, err = games1.net.Arena(ctx, "games-2:bedwars:aztec:aztec-1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("activates a group from a remote process", func() {
			acked, err := arena.CreateWorld(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(acked).To(BeTrue())
			Expect(games2.rec.HasWorld("aztec-1")).To(BeTrue())

			acked, err = arena.Activate(ctx, groupID)
			Expect(err).NotTo(HaveOccurred())
			Expect(acked).To(BeTrue())

			attrs, err := arena.Attrs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(attrs.GroupID).NotTo(BeNil())
			Expect(*attrs.GroupID).To(Equal(groupID))

			Expect(games2.net.Sessions().Len()).To(Equal(1))
			Expect(games2.rec.Teleports()).To(HaveLen(2))
			for _, tp := range games2.rec.Teleports() {
				Expect(tp.Pos.World).To(Equal("aztec-1"))
			}
		})

		It("deactivation frees the arena for reuse", func() {
			_, err := arena.CreateWorld(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = arena.Activate(ctx, groupID)
			Expect(err).NotTo(HaveOccurred())

			acked, err := arena.Deactivate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(acked).To(BeTrue())

			Expect(games2.net.Sessions().Len()).To(BeZero())
			Expect(games2.rec.HasWorld("aztec-1")).To(BeFalse())

			attrs, err := arena.Attrs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(attrs.GroupID).To(BeNil())
		})
	})

	Describe("Members", func() {
		It("replaces the record on save and resolves by id", func() {
			id := uuid.New()
			Expect(games1.net.SaveMember(ctx, game.Member{ID: id, Name: "Steve"})).To(Succeed())
			Expect(games2.net.SaveMember(ctx, game.Member{ID: id, Name: "Steve", Server: "games-2"})).To(Succeed())

			m, err := games1.net.Member(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Server).To(Equal("games-2"))
		})
	})
})
