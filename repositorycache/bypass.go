package repositorycache

import (
	"context"
)

type cacheBypassContextKey struct{}

// WithCacheBypass marks ctx so cached repositories skip the cache lookup and
// read from the store. The fresh result still repopulates the cache.
func WithCacheBypass(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cacheBypassContextKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	bypass, _ := ctx.Value(cacheBypassContextKey{}).(bool)
	return bypass
}
