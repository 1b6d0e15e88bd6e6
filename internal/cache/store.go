// Package cache holds short-lived HTTP response bodies for read endpoints.
package cache

import (
	"context"
	"time"
)

// Store is a byte cache with per-entry TTL. A miss is (nil, false, nil);
// callers treat any error as a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
