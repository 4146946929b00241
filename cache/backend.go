package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by a Backend when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: miss")

// Backend is the byte oriented store behind the Client. Implementations live
// in internal/cacheinfra; the Client is the only caller.
//
// A ttl of zero asks the backend to apply its own default expiration.
// Backends must never store an entry without expiration.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Refresh extends the expiration window of key without touching the
	// value. Backends without that capability treat it as a no-op.
	Refresh(ctx context.Context, key string) error
}
