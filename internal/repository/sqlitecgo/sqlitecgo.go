//go:build cgo

package sqlitecgo

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"infostore/internal/repository"
	"infostore/internal/repository/sqldb"
	"infostore/internal/repository/sqlbuild"
	"infostore/internal/repository/sqlite"
)

// DriverName is the database/sql driver registered by go-sqlite3
const DriverName = "sqlite3"

// Backend implements sqldb.Backend for go-sqlite3
type Backend struct {
	// DisableForeignKeys turns referential enforcement off
	DisableForeignKeys bool
}

var _ sqldb.Backend = (*Backend)(nil)

// NewProvider creates a closed Provider with foreign keys enforced
func NewProvider(opts ...sqldb.Option) *sqldb.Provider {
	return sqldb.New(&Backend{}, opts...)
}

func (b *Backend) Name() string {
	return "sqlitecgo"
}

func (b *Backend) Dialect() sqlbuild.Dialect {
	return sqlbuild.NamedDialect{}
}

func (b *Backend) Configure(ctx context.Context, conn *sql.Conn) error {
	return sqlite.ConfigureForeignKeys(ctx, conn, !b.DisableForeignKeys)
}

// Classify maps go-sqlite3 extended codes to repository error kinds
func (b *Backend) Classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return repository.ErrDuplicateKey
	case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
		// ON DELETE RESTRICT is reported as a trigger constraint
		return repository.ErrConstraint
	}
	return nil
}

// ConnectionInfo describes a SQLite database file opened through go-sqlite3
type ConnectionInfo struct {
	sqlite.ConnectionInfo
}

var _ repository.ConnectionInfo = (*ConnectionInfo)(nil)

func (c *ConnectionInfo) DriverName() string {
	return DriverName
}

// ConnectionString returns the path followed by go-sqlite3 parameters
func (c *ConnectionInfo) ConnectionString() string {
	q := url.Values{}
	if c.BusyTimeout > 0 {
		q.Set("_busy_timeout", fmt.Sprint(c.BusyTimeout.Milliseconds()))
	}
	if c.JournalMode != "" && !c.IsMemory() {
		q.Set("_journal_mode", c.JournalMode)
	}
	if len(q) == 0 {
		return c.Path
	}
	return c.Path + "?" + q.Encode()
}
