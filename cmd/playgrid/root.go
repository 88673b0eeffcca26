// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the PlayGrid CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playgrid",
		Short: "PlayGrid - a distributed minigame network process",
		Long: `PlayGrid runs one process of a distributed minigame network.
Each process owns a slice of the network's maps and arenas and reaches
the rest through the shared store and event bus.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewMapsCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
