package config

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"infostore/internal/repository"
	"infostore/internal/repository/naming"
	"infostore/internal/repository/postgres"
	"infostore/internal/repository/sqldb"
	"infostore/internal/repository/sqlite"
)

// factory builds a closed provider and the connection info to open it with
type factory func(c *Config, opts []sqldb.Option) (*sqldb.Provider, repository.ConnectionInfo)

var factories = map[Backend]factory{
	BackendSQLite: func(c *Config, opts []sqldb.Option) (*sqldb.Provider, repository.ConnectionInfo) {
		backend := &sqlite.Backend{DisableForeignKeys: !c.ForeignKeys()}
		return sqldb.New(backend, opts...), c.sqliteConnection()
	},
	BackendPostgres: func(c *Config, opts []sqldb.Option) (*sqldb.Provider, repository.ConnectionInfo) {
		return postgres.NewProvider(opts...), &postgres.ConnectionInfo{
			DSN:        c.Postgres.DSN,
			Database:   c.Postgres.Database,
			AutoCreate: c.AutoCreate,
		}
	},
}

func (c *Config) sqliteConnection() *sqlite.ConnectionInfo {
	return &sqlite.ConnectionInfo{
		Path:        c.SQLite.Path,
		AutoCreate:  c.AutoCreate,
		JournalMode: strings.ToUpper(c.SQLite.JournalMode),
		BusyTimeout: c.BusyTimeout(),
	}
}

// NewProvider validates the config and returns a closed provider for the
// configured backend, with the connection info to open it with
func (c *Config) NewProvider() (*sqldb.Provider, repository.ConnectionInfo, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	names, err := c.Names()
	if err != nil {
		return nil, nil, err
	}

	opts := []sqldb.Option{
		sqldb.WithNames(names),
		sqldb.WithDeletePageSize(c.DeletePageSize),
		sqldb.WithLogger(log.WithField("backend", string(c.Backend))),
	}
	provider, info := factories[c.Backend](c, opts)
	return provider, info, nil
}

// columnKeys maps config keys to logical columns
var columnKeys = map[string]naming.Column{
	"id":              naming.ColumnID,
	"description":     naming.ColumnDescription,
	"content":         naming.ColumnContent,
	"content_type":    naming.ColumnContentType,
	"parent_id":       naming.ColumnParentID,
	"parent_relation": naming.ColumnParentRelation,
	"content_from_id": naming.ColumnContentFromID,
	"clone_from_id":   naming.ColumnContentFromID,
	"sibling_order":   naming.ColumnSiblingOrder,
}

// Names converts the naming section into a naming provider
func (c *Config) Names() (*naming.Names, error) {
	names := &naming.Names{
		TableName: c.Naming.Table,
		Indexes:   map[naming.Index]string{},
		Overrides: map[naming.Column]string{},
	}
	if c.Naming.Index.ParentOrder != "" {
		names.Indexes[naming.IndexParentOrder] = c.Naming.Index.ParentOrder
	}
	if c.Naming.Index.ContentFrom != "" {
		names.Indexes[naming.IndexContentFrom] = c.Naming.Index.ContentFrom
	}

	for key, physical := range c.Naming.Columns {
		column, ok := columnKeys[strings.ToLower(key)]
		if !ok {
			return nil, fmt.Errorf("unknown naming column %q", key)
		}
		names.Overrides[column] = physical
	}
	return names, nil
}

func validateNames(names *naming.Names) error {
	if err := naming.Validate(names); err != nil {
		return fmt.Errorf("invalid naming: %w", err)
	}
	return nil
}
