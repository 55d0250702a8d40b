// Package codec serializes Information trees for backup and transfer.
//
// A document is a forest of nested nodes. Export walks each requested root
// depth first in sibling order. Import runs in two passes: every node is
// created parent first without its clone link, then clone links are set by
// update, so foreign keys hold after every statement.
package codec

import (
	"context"
	"io"

	"github.com/google/uuid"

	"infostore/internal/repository"
)

// Importer reads a document and stores its records below parent. A zero
// parent imports the top-level nodes as roots.
type Importer interface {
	Import(ctx context.Context, da repository.DataAccess, parent uuid.UUID, r io.Reader) (*ImportResult, error)
	Format() string
}

// Exporter writes the subtrees of roots as a document
type Exporter interface {
	Export(ctx context.Context, da repository.DataAccess, roots []uuid.UUID, w io.Writer) error
	Format() string
}

// Codec is an Importer and Exporter for a single format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered for format, or nil
func ForFormat(format string, opts Options) Codec {
	switch format {
	case "yaml", "yml":
		return NewYAMLCodec(opts)
	case "json":
		return NewJSONCodec(opts)
	}
	return nil
}

// Options tune import behavior
type Options struct {
	// FreshIDs assigns new ids to imported records and rewrites clone links
	// between them, so a document can be imported next to its source
	FreshIDs bool
}
