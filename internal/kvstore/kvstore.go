// Package kvstore is the key-value persistence the credential and history
// stores are built on. Writes are atomic per key: a reader never observes a
// partially written value, and a missing key is distinct from an empty value.
package kvstore

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// Store is the read/write capability required by the core.
type Store interface {
	// Get returns the value for key and whether the key is set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Config selects and locates a backend.
type Config struct {
	// Backend is one of the registered backend names; empty means sqlite.
	Backend string `json:"backend"`

	// Dir is the directory holding the database file. Ignored by memory.
	Dir string `json:"dir"`
}
