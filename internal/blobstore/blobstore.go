// Package blobstore provides the durable key/value blob backends that the
// record store and backfill orchestrator mirror their state into.
package blobstore

import "context"

// Store is a minimal durable blob contract. Get returns (nil, nil) for a
// missing key; callers treat read failures as "empty" and log-and-ignore
// write failures, so durability is best-effort by design.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
	Close() error
}
