// Package handler implements the HTTP JSON API over an information store.
//
// # Routes
//
//	GET    /api/information              root ids in sibling order
//	POST   /api/information              create a record
//	GET    /api/information/{id}         one record, with effective content for clones
//	PUT    /api/information/{id}         replace every field but the id
//	DELETE /api/information/{id}         delete one row; ?cascade=true deletes the subtree
//	GET    /api/information/{id}/children
//	GET    /api/information/{id}/clones
//	GET    /api/information/{id}/origin
//	GET    /api/export?root={id}&format=yaml|json
//	POST   /api/import?parent={id}&format=yaml|json&fresh_ids=true
//	GET    /metrics
//
// Error responses return JSON with {error, details} structure. Duplicate
// keys and referential restrictions map to 409 Conflict.
//
// The store behind the access point holds a single connection, so the
// handler serializes every request that touches it.
package handler
