// Package store is the persistence layer for clients and people.
// Every list and lookup takes the soft-delete visibility into account
// explicitly; updates are guarded by an optimistic version check.
package store

import "errors"

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates the record was modified by another request between
// read and write. Callers must re-fetch and retry; it is never auto-resolved.
var ErrConflict = errors.New("conflict: record was modified by another request")
