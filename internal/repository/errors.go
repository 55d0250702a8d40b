package repository

import (
	"errors"
	"fmt"
)

// Connection state errors
var (
	ErrConnectionAlreadyOpen   = errors.New("connection already open")
	ErrConnectionClosed        = errors.New("connection closed")
	ErrConnectionAlreadyClosed = errors.New("connection already closed")
	ErrConnectionDenied        = errors.New("connection denied: store does not exist and creation is not permitted")
)

// ErrDataAccessUnconfigured is returned when a record resolves itself
// through an access point that was never set
var ErrDataAccessUnconfigured = errors.New("no data access configured")

// Backend error kinds
var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConstraint   = errors.New("constraint restriction")
)

// StoreError is a backend failure classified by kind. Both the kind and the
// driver error are reachable through errors.Is and errors.As.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IsDuplicateKey reports whether err is an insert collision
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsConstraint reports whether err is a referential restriction
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}
