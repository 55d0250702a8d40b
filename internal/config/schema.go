package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version        int            `yaml:"version"`
	Backend        Backend        `yaml:"backend"`
	AutoCreate     bool           `yaml:"auto_create"`
	SQLite         SQLiteConfig   `yaml:"sqlite"`
	Postgres       PostgresConfig `yaml:"postgres,omitempty"`
	DeletePageSize int            `yaml:"delete_page_size,omitempty"` // 0 = 1000
	Naming         NamingConfig   `yaml:"naming,omitempty"`
	Log            LogConfig      `yaml:"log"`
	HTTP           HTTPConfig     `yaml:"http"`
}

// SQLiteConfig holds settings shared by the sqlite and sqlitecgo backends
type SQLiteConfig struct {
	Path        string    `yaml:"path"`
	ForeignKeys *bool     `yaml:"foreign_keys,omitempty"` // nil = enforced
	JournalMode string    `yaml:"journal_mode,omitempty"`
	BusyTimeout *Duration `yaml:"busy_timeout,omitempty"`
}

// PostgresConfig holds PostgreSQL settings
type PostgresConfig struct {
	DSN      string `yaml:"dsn,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// NamingConfig renames the physical schema. Empty values keep defaults.
type NamingConfig struct {
	Table   string            `yaml:"table,omitempty"`
	Index   IndexNames        `yaml:"index,omitempty"`
	Columns map[string]string `yaml:"columns,omitempty"` // logical name -> physical name
}

// IndexNames overrides the derived index names
type IndexNames struct {
	ParentOrder string `yaml:"parent_order,omitempty"`
	ContentFrom string `yaml:"content_from,omitempty"`
}

// LogConfig holds logging defaults, overridden by CLI flags
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Addr            string    `yaml:"addr,omitempty"`
	ShutdownTimeout *Duration `yaml:"shutdown_timeout,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// durationOr returns d, or def when d is unset
func durationOr(d *Duration, def time.Duration) time.Duration {
	if d == nil {
		return def
	}
	return d.Duration()
}
