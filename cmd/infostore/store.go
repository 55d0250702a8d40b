package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"infostore/internal/config"
	"infostore/internal/repository/sqldb"
)

// storeConfig overrides config file values
type storeConfig struct {
	Config     string `long:"config" env:"CONFIG" description:"Config file path (default: search $INFOSTORE_CONFIG, ./infostore.yaml, ~/.config/infostore)"`
	Backend    string `long:"backend" env:"BACKEND" choice:"sqlite" choice:"sqlitecgo" choice:"postgres" description:"Storage backend"`
	SQLitePath string `long:"sqlite.path" env:"SQLITE_PATH" description:"SQLite database file"`
	DSN        string `long:"postgres.dsn" env:"POSTGRES_DSN" description:"PostgreSQL server DSN"`
	Database   string `long:"postgres.database" env:"POSTGRES_DATABASE" description:"PostgreSQL database name"`
	AutoCreate string `long:"auto-create" env:"AUTO_CREATE" choice:"true" choice:"false" optional:"yes" optional-value:"true" description:"Create the store when it is missing (default: auto_create from config)"`
	PageSize   int    `long:"delete-page-size" env:"DELETE_PAGE_SIZE" description:"Maximum ids per cascading delete statement (default: 1000)"`
}

var baseCfg = new(struct {
	Store storeConfig `group:"Store"`
	Log   LogConfig   `group:"Logging" namespace:"log" env-namespace:"LOG"`
})

// loadConfig reads the config file and applies flag overrides
func loadConfig() (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if baseCfg.Store.Config != "" {
		cfg, path, err = config.LoadFromPath(baseCfg.Store.Config)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	applyOverrides(cfg, baseCfg.Store, baseCfg.Log)
	InitLog(LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if path != "" {
		log.WithField("path", path).Debug("loaded config")
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, store storeConfig, logCfg LogConfig) {
	if store.Backend != "" {
		cfg.Backend = config.ParseBackend(store.Backend)
	}
	if store.SQLitePath != "" {
		cfg.SQLite.Path = store.SQLitePath
	}
	if store.DSN != "" {
		cfg.Postgres.DSN = store.DSN
	}
	if store.Database != "" {
		cfg.Postgres.Database = store.Database
	}
	if store.AutoCreate != "" {
		cfg.AutoCreate = store.AutoCreate == "true"
	}
	if store.PageSize > 0 {
		cfg.DeletePageSize = store.PageSize
	}
	if logCfg.Level != "" {
		cfg.Log.Level = logCfg.Level
	}
	if logCfg.Format != "" {
		cfg.Log.Format = logCfg.Format
	}
}

// openStore opens the configured store. The caller releases it.
func openStore(ctx context.Context) (*sqldb.Provider, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	provider, info, err := cfg.NewProvider()
	if err != nil {
		return nil, nil, err
	}
	if err := provider.Open(ctx, info); err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	return provider, cfg, nil
}

// idArg is a required record id positional argument
type idArg struct {
	ID string `positional-arg-name:"id" required:"yes" description:"Record id"`
}

func (a idArg) parse() (uuid.UUID, error) {
	return parseID("id", a.ID)
}

func parseID(name, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return id, nil
}
