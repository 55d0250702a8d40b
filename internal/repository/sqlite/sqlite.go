// Package sqlite provides the default infostore backend on the pure-Go
// modernc.org/sqlite driver.
//
// SQLite only enforces foreign keys when asked to, so every connection runs
// PRAGMA foreign_keys = ON unless the Backend disables it explicitly for a
// legacy store. Without enforcement, Delete succeeds on referenced rows and
// leaves dangling ParentId/ContentFromId values behind.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"infostore/internal/repository"
	"infostore/internal/repository/sqldb"
	"infostore/internal/repository/sqlbuild"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

// MemoryPath opens a private in-memory store
const MemoryPath = ":memory:"

// Backend implements sqldb.Backend for modernc.org/sqlite
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
	return "sqlite"
}

func (b *Backend) Dialect() sqlbuild.Dialect {
	return sqlbuild.NamedDialect{}
}

// Configure sets foreign key enforcement on the connection
func (b *Backend) Configure(ctx context.Context, conn *sql.Conn) error {
	return ConfigureForeignKeys(ctx, conn, !b.DisableForeignKeys)
}

// Classify maps SQLite extended result codes to repository error kinds
func (b *Backend) Classify(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	return ClassifyCode(sqliteErr.Code())
}

// ClassifyCode maps an extended result code to a repository error kind
func ClassifyCode(code int) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return repository.ErrDuplicateKey
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_TRIGGER:
		// ON DELETE RESTRICT is reported as a trigger constraint
		return repository.ErrConstraint
	}
	return nil
}

// ConfigureForeignKeys switches foreign key enforcement on or off
func ConfigureForeignKeys(ctx context.Context, conn *sql.Conn, enabled bool) error {
	value := "OFF"
	if enabled {
		value = "ON"
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = "+value); err != nil {
		return errors.Wrap(err, "failed to set foreign_keys")
	}
	return nil
}

// ============================================================================
// Connection Info
// ============================================================================

// ConnectionInfo describes a SQLite database file
type ConnectionInfo struct {
	// Path of the database file, or MemoryPath
	Path string
	// AutoCreate permits creating the file when it is missing
	AutoCreate bool
	// JournalMode is WAL or DELETE; empty keeps the SQLite default
	JournalMode string
	// BusyTimeout bounds waits on a locked database
	BusyTimeout time.Duration
}

var _ repository.ConnectionInfo = (*ConnectionInfo)(nil)

func (c *ConnectionInfo) DriverName() string {
	return DriverName
}

// ConnectionString returns the path followed by modernc _pragma parameters
func (c *ConnectionInfo) ConnectionString() string {
	q := url.Values{}
	if c.BusyTimeout > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	}
	if c.JournalMode != "" && !c.IsMemory() {
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", c.JournalMode))
	}
	if len(q) == 0 {
		return c.Path
	}
	return c.Path + "?" + q.Encode()
}

// IsMemory reports whether the store lives only in memory
func (c *ConnectionInfo) IsMemory() bool {
	return c.Path == MemoryPath
}

// EnsureExists creates an empty database file when permitted. An in-memory
// store is always new.
func (c *ConnectionInfo) EnsureExists(ctx context.Context) (bool, error) {
	if c.Path == "" {
		return false, errors.New("sqlite: database path is required")
	}
	if c.IsMemory() {
		return true, nil
	}

	info, err := os.Stat(c.Path)
	if err == nil {
		if info.IsDir() {
			return false, fmt.Errorf("sqlite: %s is a directory", c.Path)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, errors.Wrap(err, "failed to stat database")
	}
	if !c.AutoCreate {
		return false, repository.ErrConnectionDenied
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return false, errors.Wrap(err, "failed to create database directory")
	}
	f, err := os.OpenFile(c.Path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return false, errors.Wrap(err, "failed to create database")
	}
	if err := f.Close(); err != nil {
		return false, errors.Wrap(err, "failed to create database")
	}
	return true, nil
}
