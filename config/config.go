// Package config defines service configuration and its loading.
//
// Configuration layers, lowest precedence first:
//  1. built-in defaults
//  2. optional YAML file named by TRACKER_CONFIG
//  3. environment variables with the TRACKER_ prefix
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file path. ":memory:" is accepted.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AuthEnabled toggles API-key authentication. Disabled by default so
	// local development works without provisioning a key first.
	AuthEnabled bool `koanf:"auth_enabled"`

	// CORSOrigins lists the allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// Seed controls whether an empty database is populated with default
	// lookup values and demo data on startup.
	Seed bool `koanf:"seed"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:        ":8080",
		DBPath:      "./data/tracker.db",
		LogLevel:    "info",
		AuthEnabled: false,
		CORSOrigins: []string{"http://localhost:3000"},
		Seed:        true,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Env keys map flat: TRACKER_ADDR -> addr, TRACKER_DB_PATH -> db_path.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRACKER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Preserve underscores so env keys line up with the koanf tags.
	envProvider := env.Provider("TRACKER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tracker_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	return &cfg, nil
}
