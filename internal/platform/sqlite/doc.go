// Package sqlite provides a single-file SQLite implementation of
// store.Adapter, built on the pure Go modernc.org/sqlite driver.
package sqlite
