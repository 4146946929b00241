package repositorycache

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/goliatone/go-service-core/cache"
	"golang.org/x/sync/singleflight"
)

// readPath is the cache-aside read shared by every cached repository of one
// entity namespace.
type readPath struct {
	client *cache.Client
	keys   cache.Keys
	opts   options
	flight singleflight.Group
}

// readThrough serves key from the cache or loads it with fetch. Concurrent
// misses on the same key share one fetch. Errors from fetch are returned as
// they are and nothing is cached for them.
//
// Callers that share a fetch get the same value: a slice result is one
// backing array and entity pointers point at the same structs. Results must
// be treated as read only; copy before mutating.
func readThrough[V any](ctx context.Context, r *readPath, op, key string, ttl time.Duration, fetch func(context.Context) (V, error)) (V, error) {
	if !cacheBypassed(ctx) {
		if v, ok := cache.Get[V](ctx, r.client, key); ok {
			r.opts.metrics.Hit(r.opts.entity, op)
			r.opts.logger.InfoContext(ctx, "cache hit", "entity", r.opts.entity, "op", op, "key", key)
			return v, nil
		}
	}

	r.opts.metrics.Miss(r.opts.entity, op)
	r.opts.logger.InfoContext(ctx, "cache miss", "entity", r.opts.entity, "op", op, "key", key)

	load := func(ctx context.Context) (V, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		if !isAbsent(v) {
			cache.Set(ctx, r.client, key, v, ttl)
		}
		return v, nil
	}

	res, err, shared := r.flight.Do(key, func() (any, error) {
		return load(ctx)
	})

	// The leader's ctx ended, ours did not: load again on our own behalf.
	if shared && err != nil && isContextErr(err) && ctx.Err() == nil {
		return load(ctx)
	}

	v, _ := res.(V)
	return v, err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isAbsent reports results that must never be cached: nil pointers, maps,
// slices and interfaces, and zero structs.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Struct:
		return rv.IsZero()
	}
	return false
}

// invalidate removes keys in one backend call and records the outcome. It
// runs after a committed write, so it must not be skipped when ctx was
// cancelled in the meantime.
func (r *readPath) invalidate(ctx context.Context, op string, keys ...string) {
	ctx = context.WithoutCancel(ctx)
	r.client.Remove(ctx, keys...)
	r.opts.metrics.Invalidated(r.opts.entity, len(keys))
	r.opts.logger.InfoContext(ctx, "cache invalidate", "entity", r.opts.entity, "op", op, "keys", keys)
}
