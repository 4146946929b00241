package cacheinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-service-core/cache"
	"github.com/viccon/sturdyc"
)

// SturdycConfig holds the configuration for the sturdyc backend.
type SturdycConfig struct {
	// Capacity defines the maximum number of entries that the cache can store.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	NumShards int

	// TTL is the lifetime sturdyc applies to every entry. It is also the
	// upper bound of any per-key TTL.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// SturdycConfigFrom maps the cache package settings onto the sturdyc ones.
func SturdycConfigFrom(cfg cache.Config) SturdycConfig {
	return SturdycConfig{
		Capacity:           cfg.Local.Capacity,
		NumShards:          cfg.Local.NumShards,
		TTL:                cfg.DefaultTTL,
		EvictionPercentage: cfg.Local.EvictionPercentage,
	}
}

// Validate checks if the configuration values are valid.
func (c SturdycConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

func (c SturdycConfig) options() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycEntry carries its own deadline because sturdyc only knows a single
// cache wide TTL.
type sturdycEntry struct {
	data    []byte
	ttl     time.Duration
	expires time.Time
}

// sturdycBackend is a sharded in-process store built on sturdyc.
type sturdycBackend struct {
	client *sturdyc.Client[sturdycEntry]
	ttl    time.Duration
	now    func() time.Time
}

// NewSturdycBackend validates cfg and builds the sturdyc client.
//
// Per-key TTLs shorter than cfg.TTL are honoured on read. Longer ones are
// capped at cfg.TTL, since sturdyc evicts on its own schedule.
func NewSturdycBackend(cfg SturdycConfig) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sturdyc backend: %w", err)
	}

	client := sturdyc.New[sturdycEntry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.options()...,
	)
	return &sturdycBackend{client: client, ttl: cfg.TTL, now: time.Now}, nil
}

func (b *sturdycBackend) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := b.lookup(key)
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return entry.data, nil
}

func (b *sturdycBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > b.ttl {
		ttl = b.ttl
	}
	b.client.Set(key, sturdycEntry{
		data:    append([]byte(nil), value...),
		ttl:     ttl,
		expires: b.now().Add(ttl),
	})
	return nil
}

func (b *sturdycBackend) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		b.client.Delete(key)
	}
	return nil
}

func (b *sturdycBackend) Exists(_ context.Context, key string) (bool, error) {
	_, ok := b.lookup(key)
	return ok, nil
}

// Refresh re-stores the entry, which restarts both its own deadline and the
// sturdyc one.
func (b *sturdycBackend) Refresh(_ context.Context, key string) error {
	entry, ok := b.lookup(key)
	if !ok {
		return cache.ErrCacheMiss
	}
	entry.expires = b.now().Add(entry.ttl)
	b.client.Set(key, entry)
	return nil
}

func (b *sturdycBackend) Ping(context.Context) error { return nil }

// Close is a no-op; the sturdyc eviction loop lives as long as the process.
func (b *sturdycBackend) Close() error { return nil }

func (b *sturdycBackend) lookup(key string) (sturdycEntry, bool) {
	entry, ok := b.client.Get(key)
	if !ok {
		return sturdycEntry{}, false
	}
	if !b.now().Before(entry.expires) {
		b.client.Delete(key)
		return sturdycEntry{}, false
	}
	return entry, true
}
