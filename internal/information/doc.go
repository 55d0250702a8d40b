// Package information provides Record, the rich form of a stored
// Information. A Record resolves and persists itself through an
// access.Point, and memoizes its resolved Parent and CloneFrom.
//
// The relation caches are keyed by the id they were resolved from.
// Reassigning ParentID or ContentFromID to a different value makes the
// next read resolve again; reading with an unchanged id is a cache hit,
// including when the cached result is "no relation". DiscardCache forces
// both relations to be resolved again.
//
// A Record is not safe for concurrent use.
package information
