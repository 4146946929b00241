package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Client is the typed front of a Backend. It has no knowledge of entity
// types: callers pick the value type per call through Get and Set.
//
// The cache is an optimization, never a dependency. Every backend or codec
// failure is logged, counted and then reported as a miss (reads) or silently
// dropped (writes). Nothing the Client does returns an error.
type Client struct {
	backend Backend
	codec   Codec
	logger  *slog.Logger
	metrics *Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCodec sets the payload codec. Defaults to JSON.
func WithCodec(codec Codec) ClientOption {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger used for absorbed failures.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables failure counters.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient wraps backend.
func NewClient(backend Backend, opts ...ClientOption) *Client {
	c := &Client{
		backend: backend,
		codec:   JSONCodec(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Codec returns the payload codec in use.
func (c *Client) Codec() Codec {
	return c.codec
}

// Get loads and decodes key into a V. The second result is false on any
// kind of miss: absent key, empty payload, payload the codec cannot read,
// backend failure or a cancelled ctx.
func Get[V any](ctx context.Context, c *Client, key string) (V, bool) {
	var zero V
	if ctx.Err() != nil {
		return zero, false
	}

	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.fail(ctx, "get", key, err)
		}
		return zero, false
	}
	if len(data) == 0 {
		return zero, false
	}

	var value V
	if err := c.codec.Unmarshal(data, &value); err != nil {
		c.fail(ctx, "decode", key, err)
		// Unreadable entries would keep missing until they expire.
		c.Remove(ctx, key)
		return zero, false
	}
	return value, true
}

// Set encodes value and stores it under key. A ttl of zero (or less) uses
// the backend default expiration.
func Set[V any](ctx context.Context, c *Client, key string, value V, ttl time.Duration) {
	if ctx.Err() != nil {
		return
	}
	if ttl < 0 {
		ttl = 0
	}

	data, err := c.codec.Marshal(value)
	if err != nil {
		c.fail(ctx, "encode", key, err)
		return
	}

	if err := c.backend.Set(ctx, key, data, ttl); err != nil {
		c.fail(ctx, "set", key, err)
		return
	}
	c.logger.DebugContext(ctx, "cache set", "key", key, "ttl", ttl, "bytes", len(data))
}

// Remove deletes keys. Removing absent keys is a success.
func (c *Client) Remove(ctx context.Context, keys ...string) {
	if len(keys) == 0 || ctx.Err() != nil {
		return
	}
	if err := c.backend.Delete(ctx, keys...); err != nil {
		c.fail(ctx, "remove", keys[0], err, "keys", len(keys))
	}
}

// Exists reports whether key is present. Failures report false.
func (c *Client) Exists(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}
	ok, err := c.backend.Exists(ctx, key)
	if err != nil {
		c.fail(ctx, "exists", key, err)
		return false
	}
	return ok
}

// Refresh extends the expiration window of key where the backend supports it.
func (c *Client) Refresh(ctx context.Context, key string) {
	if ctx.Err() != nil {
		return
	}
	if err := c.backend.Refresh(ctx, key); err != nil && !errors.Is(err, ErrCacheMiss) {
		c.fail(ctx, "refresh", key, err)
	}
}

func (c *Client) fail(ctx context.Context, op, key string, err error, attrs ...any) {
	c.metrics.BackendError(op)
	args := append([]any{"op", op, "key", key, "error", err}, attrs...)
	c.logger.WarnContext(ctx, "cache operation failed", args...)
}
