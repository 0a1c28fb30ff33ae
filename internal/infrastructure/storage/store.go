// Package storage persists the console's client-side state: the signed-in
// identity and its bearer token. Writes that touch both keys are atomic so
// the persisted copy is never half-written.
package storage

import (
	"context"
	"errors"
)

// Keys of the persisted session
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// ErrClosed is returned by stores used after Close
var ErrClosed = errors.New("storage: store is closed")

// Store is a small string key/value store
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	// GetAll reads keys in one round trip; absent keys are left out
	GetAll(ctx context.Context, keys ...string) (map[string]string, error)
	// SetAll writes every entry or none
	SetAll(ctx context.Context, entries map[string]string) error
	// Delete removes keys; missing keys are not an error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
