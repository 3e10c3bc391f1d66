// Package postgres provides a PostgreSQL implementation of store.Adapter.
// Blobs live in a single state_blobs table keyed by store key; the schema is
// managed by goose migrations embedded in the binary.
package postgres
