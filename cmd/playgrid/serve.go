// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/playgrid/playgrid/internal/bus"
	"github.com/playgrid/playgrid/internal/config"
	"github.com/playgrid/playgrid/internal/game"
	gamepg "github.com/playgrid/playgrid/internal/game/postgres"
	"github.com/playgrid/playgrid/internal/logging"
	"github.com/playgrid/playgrid/internal/observability"
	"github.com/playgrid/playgrid/internal/platform"
	"github.com/playgrid/playgrid/internal/store"
	"github.com/playgrid/playgrid/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a network process",
		Long: `Run one process of the minigame network: connect to the shared
store, join the event bus, load this process's maps and answer bus
requests for them until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("playgrid", version, cfg.LogFormat, cfg.ServerName)

	slog.Info("starting network process",
		"server", cfg.ServerName,
		"game", cfg.Game,
	)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to store")

	// Bring the schema up to date before touching any table.
	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessions := game.NewSessionManager()
	runner := game.NewRunner()

	// The observability registry is created first so the bus can
	// register its collectors on it.
	var obsServer *observability.Server
	busOpts := []bus.Option{
		bus.WithChannelPrefix(cfg.Bus.ChannelPrefix),
		bus.WithPublishTimeout(cfg.Bus.PublishTimeout),
	}

	net := (*game.Network)(nil)
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool { return net != nil }, observability.Counts{
			Maps:     func() int { return net.MapRegistry().Len() },
			Arenas:   func() int { return net.ArenaRegistry().Len() },
			Sessions: sessions.Len,
		})
		busOpts = append(busOpts, bus.WithMetrics(bus.NewMetrics(obsServer.Registry())))
	}

	pgBus := bus.NewPostgresBus(pool, cfg.ServerName, busOpts...)

	// The standalone process carries no game engine of its own; hosts
	// embedding the library supply real platform adapters.
	net, err = game.NewNetwork(game.Config{
		ServerName: cfg.ServerName,
		Maps:       gamepg.NewMapRepository(pool),
		Arenas:     gamepg.NewArenaRepository(pool),
		Groups:     gamepg.NewGroupRepository(pool),
		Members:    gamepg.NewMemberRepository(pool),
		Bus:        pgBus,
		World:      platform.Noop{},
		Teleporter: platform.Noop{},
		Presence:   platform.Noop{},
		Sessions:   sessions,
		Runner:     runner,
	})
	if err != nil {
		return err
	}

	runner.Start()
	defer runner.Stop()

	if err := pgBus.Start(ctx); err != nil {
		return err
	}
	defer pgBus.Stop()

	if cfg.Game != "" {
		loaded, err := net.LoadMaps(ctx, cfg.Game)
		if err != nil {
			return oops.Code("STARTUP_FAILED").With("game", cfg.Game).Wrapf(err, "load maps")
		}
		slog.Info("maps loaded", "count", len(loaded))
	}

	if obsServer != nil {
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Network process started")
	slog.Info("network process ready", "server", cfg.ServerName)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	slog.Info("shutting down...")

	sessions.StopAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors monitors a server's error channel and cancels the
// context on error, so a dead endpoint takes the process down with it.
// It exits when an error is received, the channel closes, or the
// context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			errutil.LogError(slog.Default().With("server", serverName), "server error, triggering shutdown", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
