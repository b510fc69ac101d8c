package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/narayan-iyengar/scope/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scope.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":4040" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL.Std() != 24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Session.Backend != "memory" || cfg.Session.TTL.Std() != 30*24*time.Hour {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Engine.NodeSize.Min != 10 || cfg.Engine.NodeSize.Max != 100 {
		t.Errorf("node size = %+v", cfg.Engine.NodeSize)
	}
	if len(cfg.Engine.Density.Levels) != 3 {
		t.Errorf("density = %+v", cfg.Engine.Density)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":8080"

[engine.node_size]
min_node_size = 5.0
max_node_size = 80.0

[engine.focus_density]
breakpoints = [4]
levels = [2.0, 4.0]

[cache]
backend = "file"
dir = "/tmp/scope-cache"
ttl = "1h"

[session]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Engine.NodeSize.Min != 5 || cfg.Engine.NodeSize.Max != 80 {
		t.Errorf("node size = %+v", cfg.Engine.NodeSize)
	}
	if d := cfg.Engine.Density; len(d.Breakpoints) != 1 || d.Breakpoints[0] != 4 || d.Levels[1] != 4.0 {
		t.Errorf("density = %+v", d)
	}
	if cfg.Cache.Backend != "file" || cfg.Cache.Dir != "/tmp/scope-cache" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Std() != time.Hour {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL.Std())
	}
	if cfg.Session.Backend != "mongo" || cfg.Session.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("session = %+v", cfg.Session)
	}

	// Untouched sections keep their defaults.
	if cfg.Session.TTL.Std() != 30*24*time.Hour {
		t.Errorf("session ttl = %v, want default", cfg.Session.TTL.Std())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Cache", "[cache]\nbackend = \"memcached\"\n"},
		{"Session", "[session]\nbackend = \"postgres\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadRejectsMismatchedDensity(t *testing.T) {
	path := writeConfig(t, `
[engine.focus_density]
breakpoints = [3, 6]
levels = [2.5, 3.5]
`)
	_, err := Load(path)
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "[cache]\nttl = \"soon\"\n"))
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
