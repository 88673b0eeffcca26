// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/playgrid/playgrid/internal/game"
	gamepg "github.com/playgrid/playgrid/internal/game/postgres"
	"github.com/playgrid/playgrid/internal/store"
)

// NewMapsCmd creates the maps subcommand. These are offline admin
// operations that talk to the store directly; a running process picks
// up changes the next time it loads its maps.
func NewMapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maps",
		Short: "Administer map records in the store",
	}

	var server, gameID string

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a map record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				repo := gamepg.NewMapRepository(pool)
				id := game.MapID{Server: server, Game: gameID, Name: args[0]}

				if _, err := repo.Get(ctx, id); err == nil {
					return oops.Code("MAP_EXISTS").With("map", id.String()).
						Errorf("map already exists")
				} else if !errors.Is(err, game.ErrNotFound) {
					return err
				}

				if err := repo.Insert(ctx, &game.Map{ID: id, CreatedAt: time.Now().UTC()}); err != nil {
					return err
				}
				cmd.Printf("Created map %s\n", id)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List map records for a server and game",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				maps, err := gamepg.NewMapRepository(pool).List(ctx, server, gameID)
				if err != nil {
					return err
				}
				if len(maps) == 0 {
					cmd.Println("No maps found")
					return nil
				}
				for _, m := range maps {
					cmd.Println(m.ID.String())
				}
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a map record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				id := game.MapID{Server: server, Game: gameID, Name: args[0]}
				if err := gamepg.NewMapRepository(pool).RemoveAll(ctx, id); err != nil {
					return err
				}
				cmd.Printf("Deleted map %s\n", id)
				return nil
			})
		},
	}

	for _, sub := range []*cobra.Command{create, list, del} {
		sub.Flags().StringVar(&server, "server", "", "owning server name")
		sub.Flags().StringVar(&gameID, "game", "", "game identifier")
		_ = sub.MarkFlagRequired("server")
		_ = sub.MarkFlagRequired("game")
		cmd.AddCommand(sub)
	}

	return cmd
}

// withPool connects to DATABASE_URL and guarantees the pool is closed
// after fn runs.
func withPool(cmd *cobra.Command, fn func(context.Context, *pgxpool.Pool) error) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	ctx := cmd.Context()
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, pool)
}
