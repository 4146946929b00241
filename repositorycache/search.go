package repositorycache

import (
	"context"

	"github.com/goliatone/go-service-core/cache"
)

// CachedSearchRepository adds cached parameterized queries on top of
// CachedRepository. Search and count entries are keyed by the fingerprint of
// the query and expire after the search TTL; writes never remove them.
type CachedSearchRepository[T Entity, Q any] struct {
	*CachedRepository[T]
	base SearchRepository[T, Q]
}

var _ SearchRepository[Entity, struct{}] = (*CachedSearchRepository[Entity, struct{}])(nil)

// NewSearch wraps base. See New for the meaning of prefix and opts.
func NewSearch[T Entity, Q any](base SearchRepository[T, Q], client *cache.Client, prefix string, opts ...Option) *CachedSearchRepository[T, Q] {
	return &CachedSearchRepository[T, Q]{
		CachedRepository: New[T](base, client, prefix, opts...),
		base:             base,
	}
}

// SearchKey returns the cache key of query's results.
func (c *CachedSearchRepository[T, Q]) SearchKey(query Q) string {
	return c.read.keys.Search(cache.FingerprintOf(query))
}

// CountKey returns the cache key of query's total.
func (c *CachedSearchRepository[T, Q]) CountKey(query Q) string {
	return c.read.keys.Count(cache.FingerprintOf(query))
}

func (c *CachedSearchRepository[T, Q]) Search(ctx context.Context, query Q) ([]T, error) {
	return readThrough(ctx, c.read, "search", c.SearchKey(query), c.read.opts.searchTTL,
		func(ctx context.Context) ([]T, error) {
			return c.base.Search(ctx, query)
		})
}

func (c *CachedSearchRepository[T, Q]) SearchCount(ctx context.Context, query Q) (int, error) {
	return readThrough(ctx, c.read, "search_count", c.CountKey(query), c.read.opts.searchTTL,
		func(ctx context.Context) (int, error) {
			return c.base.SearchCount(ctx, query)
		})
}
