package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RecentLimit != 3 {
		t.Errorf("expected RecentLimit=3, got %d", cfg.RecentLimit)
	}
	if cfg.GetCacheTTL() != 90*time.Second {
		t.Errorf("expected CacheTTL=90s, got %v", cfg.GetCacheTTL())
	}
	if cfg.GetHTTPTimeout() != 10*time.Second {
		t.Errorf("expected HTTPTimeout=10s, got %v", cfg.GetHTTPTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("STATION_DATABASE", "")
	t.Setenv("STATION_RECENT_LIMIT", "")
	t.Setenv("STATION_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RecentLimit != DefaultRecentLimit {
		t.Errorf("expected defaults, got RecentLimit=%d", cfg.RecentLimit)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("STATION_DATABASE", "")
	t.Setenv("STATION_RECENT_LIMIT", "")
	t.Setenv("STATION_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DatabasePath = "/tmp/x.db"
	cfg.RecentLimit = 5
	cfg.CacheTTL = "2m"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DatabasePath != "/tmp/x.db" {
		t.Errorf("expected DatabasePath=/tmp/x.db, got %s", loaded.DatabasePath)
	}
	if loaded.RecentLimit != 5 {
		t.Errorf("expected RecentLimit=5, got %d", loaded.RecentLimit)
	}
	if loaded.GetCacheTTL() != 2*time.Minute {
		t.Errorf("expected CacheTTL=2m, got %v", loaded.GetCacheTTL())
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STATION_DATABASE", "/env/station.db")
	t.Setenv("STATION_RECENT_LIMIT", "7")
	t.Setenv("STATION_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabasePath != "/env/station.db" {
		t.Errorf("expected env database path, got %s", cfg.DatabasePath)
	}
	if cfg.RecentLimit != 7 {
		t.Errorf("expected RecentLimit=7, got %d", cfg.RecentLimit)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", cfg.LogLevel)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("STATION_DATABASE", "")
	t.Setenv("STATION_RECENT_LIMIT", "")
	t.Setenv("STATION_LOG_LEVEL", "")

	tests := []struct {
		name string
		yaml string
	}{
		{"zero limit", "recent_limit: 0\n"},
		{"bad ttl", "cache_ttl: soon\n"},
		{"bad timeout", "http_timeout: 10 parsecs\n"},
		{"bad level", "log_level: loud\n"},
		{"not yaml", "recent_limit: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDefaultPaths_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	if got := DefaultPath(); got != filepath.Join("/xdg/config", "station", "config.yaml") {
		t.Errorf("DefaultPath() = %s", got)
	}
	if got := DefaultDatabasePath(); got != filepath.Join("/xdg/data", "station", "station.db") {
		t.Errorf("DefaultDatabasePath() = %s", got)
	}
}
