// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	gamepg "github.com/playgrid/playgrid/internal/game/postgres"
	"github.com/playgrid/playgrid/internal/store"
)

// ProcessStatus holds the probe results for one network process.
type ProcessStatus struct {
	Addr   string `json:"addr"`
	Live   bool   `json:"live"`
	Ready  bool   `json:"ready"`
	Maps   int    `json:"maps"`
	Arenas int    `json:"arenas"`
	Error  string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	metricsAddr string
	server      string
	jsonOutput  bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running network process",
		Long: `Probe a process's health endpoints and, when DATABASE_URL is set,
report how many maps and arenas the store records for its server name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", "127.0.0.1:9100", "process's metrics/health HTTP address")
	cmd.Flags().StringVar(&cfg.server, "server", "", "server name to look up in the store")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	status := queryProcessStatus(cmd.Context(), cfg)

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	return nil
}

// queryProcessStatus probes the health endpoints and counts the
// server's store records.
func queryProcessStatus(ctx context.Context, cfg *statusConfig) ProcessStatus {
	status := ProcessStatus{Addr: cfg.metricsAddr}

	client := &http.Client{Timeout: 2 * time.Second}
	status.Live = probe(client, cfg.metricsAddr, "/healthz/liveness")
	status.Ready = probe(client, cfg.metricsAddr, "/healthz/readiness")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" || cfg.server == "" {
		return status
	}

	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		status.Error = fmt.Sprintf("store: %v", err)
		return status
	}
	defer pool.Close()

	maps, err := gamepg.NewMapRepository(pool).List(ctx, cfg.server, "")
	if err != nil {
		status.Error = fmt.Sprintf("list maps: %v", err)
		return status
	}
	status.Maps = len(maps)

	arenas, err := gamepg.NewArenaRepository(pool).ListByServer(ctx, cfg.server)
	if err != nil {
		status.Error = fmt.Sprintf("list arenas: %v", err)
		return status
	}
	status.Arenas = len(arenas)

	return status
}

// probe returns true if the endpoint answers 200.
func probe(client *http.Client, addr, path string) bool {
	resp, err := client.Get("http://" + addr + path)
	if err != nil {
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ProcessStatus) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ADDR\tLIVE\tREADY\tMAPS\tARENAS")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
		status.Addr, yesNo(status.Live), yesNo(status.Ready), status.Maps, status.Arenas)
	_ = w.Flush()

	if status.Error != "" {
		sb.WriteString("error: " + status.Error + "\n")
	}
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
