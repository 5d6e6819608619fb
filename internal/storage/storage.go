// Package storage provides the device-storage abstraction the state stores
// persist into. Each store serializes its slice as one JSON value under a
// distinct key; the backend behind the KV interface is interchangeable.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value exists under the key.
var ErrKeyNotFound = errors.New("storage: key not found")

// KV is the minimal key-value surface the stores need.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StoreKey builds the storage key for a store domain, e.g. "store:cart".
func StoreKey(domain string) string {
	return "store:" + domain
}
