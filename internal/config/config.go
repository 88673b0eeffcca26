// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package config loads the process connection descriptor: this
// process's server name, store connection parameters and bus tuning.
// Precedence, lowest to highest: defaults, YAML config file,
// command-line flags, DATABASE_URL environment variable.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the process descriptor, loaded once at start.
type Config struct {
	// ServerName is this process's unique name on the network, the
	// first segment of every identifier it owns.
	ServerName string `koanf:"server_name"`

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`

	// Game is the game identifier whose maps this process hosts.
	Game string `koanf:"game"`

	// MetricsAddr is the observability HTTP address, empty disables.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	Bus BusConfig `koanf:"bus"`
}

// BusConfig tunes the event bus bridge.
type BusConfig struct {
	// ChannelPrefix namespaces the LISTEN/NOTIFY channels, letting
	// several networks share one database.
	ChannelPrefix string `koanf:"channel_prefix"`

	// PublishTimeout is how long a publish waits for a responder
	// before returning the event unclaimed.
	PublishTimeout time.Duration `koanf:"publish_timeout"`
}

// defaults returns the baseline configuration.
func defaults() Config {
	return Config{
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		Bus: BusConfig{
			ChannelPrefix:  "playgrid",
			PublishTimeout: 3 * time.Second,
		},
	}
}

// RegisterFlags declares the descriptor's command-line flags on fs.
// Flag values override the config file when set.
func RegisterFlags(fs *pflag.FlagSet) {
	d := defaults()
	fs.String("server-name", "", "this process's unique name on the network")
	fs.String("database-url", "", "PostgreSQL connection string")
	fs.String("game", "", "game identifier whose maps this process hosts")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("bus-channel-prefix", d.Bus.ChannelPrefix, "event bus channel namespace")
	fs.Duration("bus-publish-timeout", d.Bus.PublishTimeout, "how long a publish waits for a responder")
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"server-name":         "server_name",
	"database-url":        "database_url",
	"game":                "game",
	"metrics-addr":        "metrics_addr",
	"log-format":          "log_format",
	"bus-channel-prefix":  "bus.channel_prefix",
	"bus-publish-timeout": "bus.publish_timeout",
}

// Load reads the descriptor. path may be empty (no config file);
// flags may be nil (no flag overrides).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	cfg := defaults()
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrapf(err, "load config file")
		}
	}
	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "load flags")
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrapf(err, "unmarshal config")
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the descriptor is usable.
func (c Config) Validate() error {
	switch {
	case c.ServerName == "":
		return oops.Code("CONFIG_INVALID").Errorf("server_name is required")
	case c.DatabaseURL == "":
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required (flag, config file, or DATABASE_URL)")
	case c.LogFormat != "json" && c.LogFormat != "text":
		return oops.Code("CONFIG_INVALID").Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	case c.Bus.PublishTimeout <= 0:
		return oops.Code("CONFIG_INVALID").Errorf("bus.publish_timeout must be positive")
	}
	return nil
}
