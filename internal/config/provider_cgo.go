//go:build cgo

package config

import (
	"infostore/internal/repository"
	"infostore/internal/repository/sqldb"
	"infostore/internal/repository/sqlitecgo"
)

func init() {
	factories[BackendSQLiteCgo] = func(c *Config, opts []sqldb.Option) (*sqldb.Provider, repository.ConnectionInfo) {
		backend := &sqlitecgo.Backend{DisableForeignKeys: !c.ForeignKeys()}
		return sqldb.New(backend, opts...), &sqlitecgo.ConnectionInfo{ConnectionInfo: *c.sqliteConnection()}
	}
}
