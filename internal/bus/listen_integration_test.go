// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

//go:build integration

package bus_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/playgrid/playgrid/internal/bus"
	"github.com/playgrid/playgrid/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container and connects two
// independent pools to it, one per simulated process.
func setupPostgresContainer() (a, b *pgxpool.Pool, cleanup func(), err error) {
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
		return nil, nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, nil, err
	}

	a, err = store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err = store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup = func() {
		a.Close()
		b.Close()
		_ = container.Terminate(ctx)
	}
	return a, b, cleanup, nil
}

var _ = Describe("PostgresBus over LISTEN/NOTIFY", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		cleanup   func()
		publisher *bus.PostgresBus
		owner     *bus.PostgresBus
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())

		poolA, poolB, cl, err := setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		cleanup = cl

		publisher = bus.NewPostgresBus(poolA, "lobby-1",
			bus.WithPublishTimeout(500*time.Millisecond))
		owner = bus.NewPostgresBus(poolB, "games-2")

		Expect(publisher.Start(ctx)).To(Succeed())
		Expect(owner.Start(ctx)).To(Succeed())
	})

	AfterEach(func() {
		publisher.Stop()
		owner.Stop()
		cancel()
		cleanup()
	})

	It("completes a claimed request across processes", func() {
		owner.Subscribe(func(_ context.Context, ev bus.Event) (bus.Event, bool) {
			if ev.Target != "games-2:bedwars:aztec:aztec-1" {
				return bus.Event{}, false
			}
			ev.Complete = true
			return ev, true
		})

		// The listeners issue LISTEN asynchronously after Start, so
		// the first publishes may go unheard.
		Eventually(func() bool {
			ev, err := bus.NewEvent("lobby-1", "games-2:bedwars:aztec:aztec-1", "arena.create_world", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := publisher.Publish(ctx, ev)
			return err == nil && resp.Complete
		}, 10*time.Second, 100*time.Millisecond).Should(BeTrue())
	})

	It("carries the failure message and code on the response", func() {
		owner.Subscribe(func(_ context.Context, ev bus.Event) (bus.Event, bool) {
			ev.Complete = true
			ev.Error = "arena already active"
			ev.Code = "ARENA_ALREADY_ACTIVE"
			return ev, true
		})

		var resp bus.Event
		Eventually(func() bool {
			ev, err := bus.NewEvent("lobby-1", "games-2:bedwars:aztec:aztec-1", "arena.activate", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err = publisher.Publish(ctx, ev)
			return err == nil && resp.Complete
		}, 10*time.Second, 100*time.Millisecond).Should(BeTrue())

		Expect(resp.Error).To(Equal("arena already active"))
		Expect(resp.Code).To(Equal("ARENA_ALREADY_ACTIVE"))
	})

	It("returns an unclaimed request incomplete after the timeout", func() {
		// No subscriber anywhere claims this target.
		ev, err := bus.NewEvent("lobby-1", "nobody:owns:this", "map.save", nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := publisher.Publish(ctx, ev)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Complete).To(BeFalse())
	})

	It("stops cleanly while listeners are connected", func() {
		// Stop must return once both listeners drained; a hang here
		// fails the spec by timeout.
		done := make(chan struct{})
		go func() {
			owner.Stop()
			close(done)
		}()
		Eventually(done, 10*time.Second).Should(BeClosed())

		Expect(owner.Start(ctx)).To(Succeed(), "a stopped bus can start again")
	})
})
