// Package storage persists the client's credential and session between runs.
package storage

import (
	"context"
	"errors"
)

// Keys under which the session store persists its state.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("storage: closed")

// Store is a durable string key/value store. Writes are synchronous: once Set
// or Delete returns nil the change survives a restart.
type Store interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Close releases the resources held by the store.
	Close() error
}
