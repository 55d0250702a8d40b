package sqldb

import (
	"context"
	"database/sql"

	"infostore/internal/repository/sqlbuild"
)

// Backend supplies the engine-specific parts of a Provider
type Backend interface {
	// Name identifies the backend in logs and metrics
	Name() string
	// Dialect controls parameter binding, quoting and column types
	Dialect() sqlbuild.Dialect
	// Configure runs once on the physical connection after it is opened
	Configure(ctx context.Context, conn *sql.Conn) error
	// Classify maps a driver error to repository.ErrDuplicateKey or
	// repository.ErrConstraint, or returns nil if it is neither
	Classify(err error) error
}
