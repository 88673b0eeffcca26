// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	path := writeConfig(t, `
server_name: lobby-1
database_url: postgres://localhost/playgrid
game: bedwars
bus:
  channel_prefix: pg_test
  publish_timeout: 5s
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "lobby-1", cfg.ServerName)
	assert.Equal(t, "postgres://localhost/playgrid", cfg.DatabaseURL)
	assert.Equal(t, "bedwars", cfg.Game)
	assert.Equal(t, "pg_test", cfg.Bus.ChannelPrefix)
	assert.Equal(t, 5*time.Second, cfg.Bus.PublishTimeout)

	// Untouched keys keep their defaults
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	path := writeConfig(t, `
server_name: lobby-1
database_url: postgres://localhost/playgrid
log_format: json
`)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--server-name=games-2",
		"--log-format=text",
		"--bus-publish-timeout=10s",
	}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "games-2", cfg.ServerName)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.Bus.PublishTimeout)

	// File value survives where no flag was set
	assert.Equal(t, "postgres://localhost/playgrid", cfg.DatabaseURL)
}

func TestLoad_EnvOverridesEverything(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/playgrid")

	path := writeConfig(t, `
server_name: lobby-1
database_url: postgres://file-host/playgrid
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host/playgrid", cfg.DatabaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/playgrid.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config file")
}

func TestValidate(t *testing.T) {
	valid := Config{
		ServerName:  "lobby-1",
		DatabaseURL: "postgres://localhost/playgrid",
		LogFormat:   "json",
		Bus:         BusConfig{ChannelPrefix: "playgrid", PublishTimeout: time.Second},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing server name",
			mutate:  func(c *Config) { c.ServerName = "" },
			wantErr: "server_name",
		},
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "database_url",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "log_format",
		},
		{
			name:    "non-positive publish timeout",
			mutate:  func(c *Config) { c.Bus.PublishTimeout = 0 },
			wantErr: "publish_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
