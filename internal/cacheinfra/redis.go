package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-service-core/cache"
	"github.com/redis/go-redis/v9"
)

// redisBackend stores payloads as plain redis strings so they stay readable
// from redis-cli when the JSON codec is in use.
type redisBackend struct {
	rdb        redis.UniversalClient
	defaultTTL time.Duration
}

// NewRedisBackend connects to redis. The connection is lazy: an unreachable
// server surfaces as absorbed failures in the cache client, never as a
// startup error, unless the caller checks Ping.
func NewRedisBackend(cfg cache.RedisConfig, defaultTTL time.Duration) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis backend: %w", err)
	}
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("redis backend: default ttl must be positive, got %s", defaultTTL)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return newRedisBackend(rdb, defaultTTL), nil
}

func newRedisBackend(rdb redis.UniversalClient, defaultTTL time.Duration) *redisBackend {
	return &redisBackend{rdb: rdb, defaultTTL: defaultTTL}
}

func (b *redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrCacheMiss
	}
	return data, err
}

func (b *redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = b.defaultTTL
	}
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

func (b *redisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.rdb.Del(ctx, keys...).Err()
}

func (b *redisBackend) Exists(ctx context.Context, key string) (bool, error) {
	n, err := b.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Refresh re-arms key with the default TTL. Redis does not remember the TTL
// a key was written with.
func (b *redisBackend) Refresh(ctx context.Context, key string) error {
	ok, err := b.rdb.Expire(ctx, key, b.defaultTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return cache.ErrCacheMiss
	}
	return nil
}

func (b *redisBackend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *redisBackend) Close() error {
	return b.rdb.Close()
}
