package cacheinfra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-service-core/cache"
	"github.com/jellydator/ttlcache/v3"
)

// memoryBackend is a single process store with per-key expiration. Reads do
// not extend an entry's lifetime; only Refresh does.
type memoryBackend struct {
	items *ttlcache.Cache[string, []byte]
	stop  sync.Once
}

// NewMemoryBackend returns an in-process backend. capacity of zero means
// unbounded. The expiration loop runs until Close.
func NewMemoryBackend(defaultTTL time.Duration, capacity uint64) (Backend, error) {
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("memory backend: default ttl must be positive, got %s", defaultTTL)
	}

	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithTTL[string, []byte](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](capacity))
	}

	items := ttlcache.New(opts...)
	go items.Start()

	return &memoryBackend{items: items}, nil
}

func (b *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	item := b.items.Get(key)
	if item == nil {
		return nil, cache.ErrCacheMiss
	}
	return item.Value(), nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}
	// The caller may reuse its buffer.
	b.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		b.items.Delete(key)
	}
	return nil
}

func (b *memoryBackend) Exists(_ context.Context, key string) (bool, error) {
	return b.items.Has(key), nil
}

// Refresh extends key by the TTL it was stored with.
func (b *memoryBackend) Refresh(_ context.Context, key string) error {
	if !b.items.Has(key) {
		return cache.ErrCacheMiss
	}
	b.items.Touch(key)
	return nil
}

func (b *memoryBackend) Ping(context.Context) error { return nil }

func (b *memoryBackend) Close() error {
	b.stop.Do(b.items.Stop)
	return nil
}
