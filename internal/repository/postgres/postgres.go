// Package postgres provides an infostore backend on github.com/lib/pq.
//
// A ConnectionInfo names a server and a database. EnsureExists connects to
// the server's maintenance database to look the target database up and, if
// permitted, creates it.
package postgres

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"infostore/internal/repository"
	"infostore/internal/repository/sqldb"
	"infostore/internal/repository/sqlbuild"
)

// DriverName is the database/sql driver registered by lib/pq
const DriverName = "postgres"

// MaintenanceDatabase is the database used to create other databases
const MaintenanceDatabase = "postgres"

// Backend implements sqldb.Backend for lib/pq
type Backend struct{}

var _ sqldb.Backend = (*Backend)(nil)

// NewProvider creates a closed Provider
func NewProvider(opts ...sqldb.Option) *sqldb.Provider {
	return sqldb.New(&Backend{}, opts...)
}

func (b *Backend) Name() string {
	return "postgres"
}

func (b *Backend) Dialect() sqlbuild.Dialect {
	return sqlbuild.OrdinalDialect{}
}

// Configure does nothing: PostgreSQL always enforces foreign keys
func (b *Backend) Configure(ctx context.Context, conn *sql.Conn) error {
	return nil
}

// Classify maps SQLSTATE codes to repository error kinds
func (b *Backend) Classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	return ClassifyCode(pqErr.Code)
}

// ClassifyCode maps a SQLSTATE code to a repository error kind
func ClassifyCode(code pq.ErrorCode) error {
	switch code.Name() {
	case "unique_violation":
		return repository.ErrDuplicateKey
	case "foreign_key_violation", "restrict_violation":
		return repository.ErrConstraint
	}
	return nil
}

// ============================================================================
// Connection Info
// ============================================================================

// ConnectionInfo describes a database on a PostgreSQL server
type ConnectionInfo struct {
	// DSN reaches the server, as a URL or key/value string. A database
	// named in DSN is replaced by Database.
	DSN string
	// Database is the name of the store
	Database string
	// AutoCreate permits CREATE DATABASE when the store is missing
	AutoCreate bool
}

var _ repository.ConnectionInfo = (*ConnectionInfo)(nil)

func (c *ConnectionInfo) DriverName() string {
	return DriverName
}

// ConnectionString returns DSN pointed at Database
func (c *ConnectionInfo) ConnectionString() string {
	return withDatabase(c.DSN, c.Database)
}

// EnsureExists looks the database up on the server and creates it when
// missing and permitted
func (c *ConnectionInfo) EnsureExists(ctx context.Context) (bool, error) {
	if c.Database == "" {
		return false, errors.New("postgres: database name is required")
	}

	db, err := sql.Open(DriverName, withDatabase(c.DSN, MaintenanceDatabase))
	if err != nil {
		return false, errors.Wrap(err, "failed to open maintenance database")
	}
	defer db.Close()

	var marker int
	err = db.QueryRowContext(ctx, `SELECT 1 FROM pg_database WHERE datname = $1`, c.Database).Scan(&marker)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, errors.Wrap(err, "failed to look up database")
	case !c.AutoCreate:
		return false, repository.ErrConnectionDenied
	}

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(c.Database)); err != nil {
		return false, errors.Wrapf(err, "failed to create database %s", c.Database)
	}
	return true, nil
}

// withDatabase rewrites the database of a URL or key/value DSN
func withDatabase(dsn, database string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err == nil {
			u.Path = "/" + database
			return u.String()
		}
	}

	var fields []string
	for _, field := range strings.Fields(dsn) {
		if !strings.HasPrefix(field, "dbname=") {
			fields = append(fields, field)
		}
	}
	fields = append(fields, "dbname="+quoteValue(database))
	return strings.Join(fields, " ")
}

// quoteValue quotes a key/value DSN value when it needs it
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
