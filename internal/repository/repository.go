package repository

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"infostore/internal/domain"
)

// DataAccess defines the record operations shared by every backend
type DataAccess interface {
	// Read operations
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Information, error)

	// Write operations
	Create(ctx context.Context, info *domain.Information) (uuid.UUID, error)
	Update(ctx context.Context, info *domain.Information) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Tree relation
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	Children(ctx context.Context, id uuid.UUID) iter.Seq2[uuid.UUID, error]
	Roots(ctx context.Context) iter.Seq2[uuid.UUID, error]
	DeleteAll(ctx context.Context, id uuid.UUID) (int64, error)

	// Clone relation
	HasContentTo(ctx context.Context, id uuid.UUID) (bool, error)
	ContentTo(ctx context.Context, id uuid.UUID) iter.Seq2[uuid.UUID, error]
	ContentFrom(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// Repository is a DataAccess with an explicit connection lifecycle
type Repository interface {
	DataAccess

	Mode() Mode
	Open(ctx context.Context, info ConnectionInfo) error
	CreateStructure(ctx context.Context) error

	// Close releases the connection and fails if it is already closed
	Close() error
	// Release is Close for deferred cleanup: a no-op once closed
	Release() error
}

// ConnectionInfo describes a physical store and how to reach it
type ConnectionInfo interface {
	// DriverName is the database/sql driver used to open the store
	DriverName() string
	// ConnectionString is the data source name passed to the driver
	ConnectionString() string
	// EnsureExists creates the store when it is missing and creation is
	// permitted. It reports whether the store was created, and fails with
	// ErrConnectionDenied when creation is needed but not allowed.
	EnsureExists(ctx context.Context) (bool, error)
}

// Collect drains a lazy id sequence into a slice, stopping at the first error
func Collect(seq iter.Seq2[uuid.UUID, error]) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, err := range seq {
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
