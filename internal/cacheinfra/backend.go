// Package cacheinfra holds the concrete cache backends: redis for shared
// deployments, ttlcache for single process setups and sturdyc for a sharded
// local cache under heavy read load.
package cacheinfra

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-service-core/cache"
)

// Backend is a cache.Backend that owns resources and can report health.
type Backend interface {
	cache.Backend
	io.Closer
	Ping(ctx context.Context) error
}

var (
	_ Backend = (*redisBackend)(nil)
	_ Backend = (*memoryBackend)(nil)
	_ Backend = (*sturdycBackend)(nil)
)

// New builds the backend selected by cfg.Backend.
func New(cfg cache.Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}

	switch cfg.Backend {
	case cache.BackendRedis:
		return NewRedisBackend(cfg.Redis, cfg.DefaultTTL)
	case cache.BackendMemory:
		var capacity uint64
		if cfg.Local.Capacity > 0 {
			capacity = uint64(cfg.Local.Capacity)
		}
		return NewMemoryBackend(cfg.DefaultTTL, capacity)
	case cache.BackendLocal:
		return NewSturdycBackend(SturdycConfigFrom(cfg))
	default:
		return nil, fmt.Errorf("cache config: unknown backend %q", cfg.Backend)
	}
}
