// Package domain defines the core record type stored by infostore.
//
// An Information record is a node in a content graph. It may have a parent
// (the tree relation), may take its content from another record (the clone
// relation), and is ordered among its siblings.
//
// # Identifiers
//
// Records are keyed by 128-bit UUIDs. The zero UUID (uuid.Nil) is the
// sentinel for "no value": a zero ParentID marks a root, a zero
// ContentFromID marks a record that owns its content, and a zero ID marks a
// record that has not been stored yet.
//
// # Content
//
// Content is free text interpreted according to ContentType. For a record
// with a non-zero ContentFromID the effective content is the content of the
// record found at the end of the clone chain; the stored Content of a clone
// is only a cached copy.
//
// # Design Principles
//
// - No database or external dependencies beyond identifier handling
// - Zero values are meaningful and safe to use
package domain
