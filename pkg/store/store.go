// Package store persists analyzed sessions in size-limited key/value stores,
// splitting the serialized form into chunks when a store caps value size.
package store

import (
	"context"
	"errors"
)

var (
	// ErrValueTooLarge is returned when a value exceeds the per-key cap.
	ErrValueTooLarge = errors.New("value exceeds per-key size limit")

	// ErrQuotaExceeded is returned when a write would exceed the store quota.
	ErrQuotaExceeded = errors.New("store quota exceeded")
)

// Store is a byte-oriented key/value store.
// Implementations must be safe for concurrent use.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error

	// MaxValueSize is the largest value accepted under one key, 0 if unlimited.
	MaxValueSize() int

	Close() error
}
