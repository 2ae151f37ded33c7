package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRecentLimit is the number of stations kept in the recent list
	DefaultRecentLimit = 3

	defaultCacheTTL    = "90s"
	defaultHTTPTimeout = "10s"
)

// Config holds all station CLI configuration.
type Config struct {
	// SQLite file holding preferences and cached responses
	DatabasePath string `yaml:"database_path"`

	// Maximum length of the recent stations list
	RecentLimit int `yaml:"recent_limit"`

	// Response cache lifetime (Go duration string)
	CacheTTL string `yaml:"cache_ttl"`

	// HTTP client timeout (Go duration string)
	HTTPTimeout string `yaml:"http_timeout"`

	// debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath: DefaultDatabasePath(),
		RecentLimit:  DefaultRecentLimit,
		CacheTTL:     defaultCacheTTL,
		HTTPTimeout:  defaultHTTPTimeout,
		LogLevel:     "warn",
	}
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "station", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "station", "config.yaml")
	}
	return filepath.Join(home, ".config", "station", "config.yaml")
}

// DefaultDatabasePath returns the default database location
func DefaultDatabasePath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "station", "station.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "station", "station.db")
	}
	return filepath.Join(home, ".local", "share", "station", "station.db")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// #nosec G304 -- path is the user's own config file
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STATION_DATABASE"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("STATION_RECENT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RecentLimit = n
		}
	}
	if v := os.Getenv("STATION_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be at least 1, got %d", c.RecentLimit)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl %q: %w", c.CacheTTL, err)
	}
	if _, err := time.ParseDuration(c.HTTPTimeout); err != nil {
		return fmt.Errorf("invalid http_timeout %q: %w", c.HTTPTimeout, err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// GetCacheTTL returns the response cache lifetime
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 90 * time.Second
	}
	return d
}

// GetHTTPTimeout returns the HTTP client timeout
func (c *Config) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
