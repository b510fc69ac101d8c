// Package config loads engine and server configuration from a TOML file.
//
// Everything has a sensible default; a config file only overrides what it
// mentions. The layout tuning constants (node size bounds, focus ring
// density thresholds, scale clamp behavior) live here because they are
// empirical configuration, not derived values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/narayan-iyengar/scope/pkg/errors"
	"github.com/narayan-iyengar/scope/pkg/focus"
	"github.com/narayan-iyengar/scope/pkg/layout"
)

// Config is the root configuration.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Session SessionConfig `toml:"session"`
}

// EngineConfig tunes the layout engine.
type EngineConfig struct {
	NodeSize layout.SizeLimits `toml:"node_size"`
	Density  focus.Density     `toml:"focus_density"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "file", "redis", "none".
	Backend string `toml:"backend"`

	// Dir is the cache directory for the file backend. Empty means a
	// "scope" subdirectory of the user cache dir.
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	TTL Duration `toml:"ttl"`
}

// SessionConfig selects and configures the view session backend.
type SessionConfig struct {
	// Backend is one of "memory", "mongo".
	Backend string `toml:"backend"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	TTL Duration `toml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			NodeSize: layout.DefaultSizeLimits(),
			Density:  focus.DefaultDensity(),
		},
		Server: ServerConfig{
			Addr: ":4040",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     Duration(24 * time.Hour),
		},
		Session: SessionConfig{
			Backend: "memory",
			TTL:     Duration(30 * 24 * time.Hour),
		},
	}
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "memory", "file", "redis", "none", "":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Session.Backend {
	case "memory", "mongo", "":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown session backend %q", c.Session.Backend)
	}
	d := c.Engine.Density
	if len(d.Levels) > 0 && len(d.Levels) != len(d.Breakpoints)+1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"focus_density needs one more level than breakpoints (got %d levels, %d breakpoints)",
			len(d.Levels), len(d.Breakpoints))
	}
	return nil
}

// Duration is a time.Duration that unmarshals from TOML strings like "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
