// Package repository defines the data access contracts for infostore.
//
// This package provides the abstraction layer between Information records
// and the SQL engines that store them. The shared engine lives in the sqldb
// subpackage; sqlite, sqlitecgo and postgres supply backends for it.
//
// # Interfaces
//
// DataAccess is the record-level contract: existence checks, CRUD, child
// and clone listings, clone-origin resolution and cascading delete.
// Repository adds the connection lifecycle (Open, CreateStructure, Close).
//
// # Absence
//
// Missing rows, broken clone chains and clone cycles are reported as
// absence (nil records, false, or uuid.Nil), never as errors. A zero id is
// always absent and never reaches storage.
//
// # Errors
//
// Connection state errors (ErrConnectionAlreadyOpen, ErrConnectionClosed,
// ErrConnectionAlreadyClosed, ErrConnectionDenied) are returned as is.
// Backend failures that a backend can classify are returned as *StoreError
// carrying ErrDuplicateKey or ErrConstraint, so callers can tell an id
// collision or a still-referenced row from a malformed statement.
//
// # Concurrency
//
// A Repository holds a single physical connection and is not safe for
// concurrent writers. DeleteAll issues independent statements without an
// enclosing transaction; a failure part-way leaves the deepest levels
// removed and the shallower levels intact.
package repository
