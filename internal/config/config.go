// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, and command-line flag overrides, in that order of precedence.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full configuration of the credential service.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Recovery RecoveryConfig `koanf:"recovery"`
	Reaper   ReaperConfig   `koanf:"reaper"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// SessionConfig holds session token settings. Secrets[0] signs new tokens;
// the rest remain valid for verification during rotation.
type SessionConfig struct {
	Secrets      []string      `koanf:"secrets"`
	TTL          time.Duration `koanf:"ttl"`
	RefreshGrace time.Duration `koanf:"refresh_grace"`
}

// RecoveryConfig holds recovery token settings.
type RecoveryConfig struct {
	TokenTTL time.Duration `koanf:"token_ttl"`
}

// ReaperConfig holds the expired-token sweep schedule.
type ReaperConfig struct {
	Interval  time.Duration `koanf:"interval"`
	Retention time.Duration `koanf:"retention"`
}

// MetricsConfig holds the observability endpoint settings. An empty Addr
// disables the endpoint.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `koanf:"format"` // "json" or "text"
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Session: SessionConfig{
			TTL:          24 * time.Hour,
			RefreshGrace: 5 * time.Minute,
		},
		Recovery: RecoveryConfig{
			TokenTTL: 24 * time.Hour,
		},
		Reaper: ReaperConfig{
			Interval:  24 * time.Hour,
			Retention: 7 * 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9100",
		},
		Log: LogConfig{
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (if non-empty), then any set flags. Flag names use dots as separators
// (e.g. database.url) so they map directly onto config keys.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	// Defaults go into the map first so posflag can tell an unset flag
	// apart from a deliberate override.
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}

// Validate checks constraints that Load cannot express.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if len(c.Session.Secrets) == 0 {
		return oops.Code("CONFIG_INVALID").Errorf("at least one session secret is required")
	}
	for i, s := range c.Session.Secrets {
		if s == "" {
			return oops.Code("CONFIG_INVALID").Errorf("session secret %d is empty", i)
		}
	}
	if c.Session.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.ttl must be positive")
	}
	if c.Recovery.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("recovery.token_ttl must be positive")
	}
	if c.Reaper.Interval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("reaper.interval must be positive")
	}
	if c.Reaper.Retention < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("reaper.retention cannot be negative")
	}
	return nil
}

// SecretBytes returns the session secrets as byte slices for the signer.
func (c Config) SecretBytes() [][]byte {
	secrets := make([][]byte, 0, len(c.Session.Secrets))
	for _, s := range c.Session.Secrets {
		secrets = append(secrets, []byte(s))
	}
	return secrets
}
