// Package config loads distlab settings.
//
// Precedence, lowest first: built-in defaults, a TOML file, DISTLAB_*
// environment variables. Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config holds settings shared by the distlab commands.
type Config struct {
	// DB is the SQLite history path. Empty means an in-memory store.
	DB string `toml:"db" env:"DISTLAB_DB"`

	// Seed seeds rng evaluations when no --seed flag is given.
	Seed int64 `toml:"seed" env:"DISTLAB_SEED"`

	// Draws is the default sample size for the sample command.
	Draws int `toml:"draws" env:"DISTLAB_DRAWS"`

	// MaxDraws is the per-run draw budget. Zero keeps the engine default.
	MaxDraws int64 `toml:"max_draws" env:"DISTLAB_MAX_DRAWS"`

	// Jitter is the least jitter added to GP covariance diagonals; a gp
	// declaring a smaller one is raised to it.
	Jitter float64 `toml:"jitter" env:"DISTLAB_JITTER"`

	// Cache enables memoisation of deterministic evaluations.
	Cache bool `toml:"cache" env:"DISTLAB_CACHE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" env:"DISTLAB_LOG_LEVEL"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Draws:    1000,
		Jitter:   1e-9,
		Cache:    true,
		LogLevel: "info",
	}
}

// Load reads path (if non-empty) over the defaults, then applies the
// process environment.
func Load(path string) (Config, error) {
	return load(path, nil)
}

// LoadWithEnv is Load with an explicit environment instead of os.Environ.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return load(path, environ)
}

func load(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeTOML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Variables that are not set leave the field untouched, so file values
	// survive. No envDefault tags for the same reason.
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeTOML rejects keys that do not map to a Config field.
func decodeTOML(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return err
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Draws <= 0 {
		return fmt.Errorf("config: draws must be positive, got %d", c.Draws)
	}
	if c.MaxDraws < 0 {
		return fmt.Errorf("config: max_draws must be non-negative, got %d", c.MaxDraws)
	}
	if c.Jitter < 0 {
		return fmt.Errorf("config: jitter must be non-negative, got %g", c.Jitter)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log_level %q (want debug, info, warn or error)", s)
}
