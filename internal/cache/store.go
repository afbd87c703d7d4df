package cache

import (
	"context"
	"time"
)

// Store keeps opaque session blobs with a time-to-live.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Close() error
}
