// Package config provides configuration management for infostore.
//
// Config file locations (priority order):
//  1. $INFOSTORE_CONFIG
//  2. ./infostore.yaml
//  3. $XDG_CONFIG_HOME/infostore/config.yaml
//  4. ~/.config/infostore/config.yaml
//  5. /etc/infostore/config.yaml
//
// Command line flags override values read from the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSQLitePath      = "./infostore.db"
	defaultHTTPAddr        = "127.0.0.1:8080"
	defaultBusyTimeout     = 5 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{AutoCreate: true}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	c.Backend = ParseBackend(string(c.Backend))
	if c.SQLite.Path == "" {
		c.SQLite.Path = defaultSQLitePath
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
}

// ForeignKeys reports whether SQLite stores enforce references
func (c *Config) ForeignKeys() bool {
	return c.SQLite.ForeignKeys == nil || *c.SQLite.ForeignKeys
}

// BusyTimeout returns the SQLite lock wait
func (c *Config) BusyTimeout() time.Duration {
	return durationOr(c.SQLite.BusyTimeout, defaultBusyTimeout)
}

// ShutdownTimeout bounds graceful shutdown of the API server
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.HTTP.ShutdownTimeout, defaultShutdownTimeout)
}

var journalModes = map[string]bool{
	"DELETE": true, "TRUNCATE": true, "PERSIST": true,
	"MEMORY": true, "WAL": true, "OFF": true,
}

var logFormats = map[string]bool{"text": true, "json": true, "color": true}

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true,
	"warn": true, "error": true, "fatal": true,
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	if !c.Backend.Available() {
		for _, b := range Backends {
			if b == c.Backend {
				return fmt.Errorf("backend %q is not available in this build", c.Backend)
			}
		}
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch {
	case c.Backend.IsSQLite():
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required")
		}
		if mode := c.SQLite.JournalMode; mode != "" && !journalModes[strings.ToUpper(mode)] {
			return fmt.Errorf("unknown sqlite.journal_mode %q", mode)
		}
	case c.Backend == BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required")
		}
	}

	if c.DeletePageSize < 0 {
		return fmt.Errorf("delete_page_size must not be negative, got %d", c.DeletePageSize)
	}
	if !logLevels[c.Log.Level] {
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	if !logFormats[c.Log.Format] {
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}

	names, err := c.Names()
	if err != nil {
		return err
	}
	return validateNames(names)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	var target string
	switch c.Backend {
	case BackendPostgres:
		target = c.Postgres.Database
		if target == "" {
			target = "(from dsn)"
		}
	default:
		target = c.SQLite.Path
	}

	summary := fmt.Sprintf("Backend: %s, Store: %s, Auto-create: %t\n", c.Backend, target, c.AutoCreate)
	names, err := c.Names()
	if err == nil {
		summary += fmt.Sprintf("Table: %s, Log: %s/%s", names.Table(), c.Log.Level, c.Log.Format)
	}
	return summary
}
