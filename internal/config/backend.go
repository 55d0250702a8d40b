package config

import "strings"

// Backend selects the storage engine
type Backend string

const (
	BackendSQLite    Backend = "sqlite"    // modernc.org/sqlite, pure Go
	BackendSQLiteCgo Backend = "sqlitecgo" // mattn/go-sqlite3, needs cgo
	BackendPostgres  Backend = "postgres"  // lib/pq
)

// Backends lists every backend name in preference order
var Backends = []Backend{BackendSQLite, BackendSQLiteCgo, BackendPostgres}

// ParseBackend converts a string to Backend, defaulting to BackendSQLite.
// Unknown names are kept so that Validate can report them.
func ParseBackend(s string) Backend {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendSQLite
	case "postgresql", "pq":
		return BackendPostgres
	default:
		return b
	}
}

// IsSQLite reports whether the backend stores into a SQLite file
func (b Backend) IsSQLite() bool {
	return b == BackendSQLite || b == BackendSQLiteCgo
}

// Available reports whether this binary can open the backend
func (b Backend) Available() bool {
	_, ok := factories[b]
	return ok
}
