// Package repositorycache provides cache-aside decorators for repositories.
//
// # Overview
//
// CachedRepository wraps a Repository and serves reads from a cache.Client.
// Misses go to the wrapped repository and the result is stored with a TTL.
// Writes always reach the wrapped repository first; only after they succeed
// are the affected keys removed.
//
// # Basic Usage
//
//	client := cache.NewClient(backend)
//	auctions := repositorycache.New[*Auction](store, client, "auction")
//
//	a, err := auctions.GetByID(ctx, id)
//	all, err := auctions.GetAll(ctx)
//
// CachedSearchRepository adds Search and SearchCount, keyed by a fingerprint
// of the query:
//
//	catalogue := repositorycache.NewSearch[*Item, search.Query](store, client, "search")
//	items, err := catalogue.Search(ctx, q)
//
// # Keys and TTLs
//
// Keys follow {prefix}:{entity}:{suffix}, see cache.Keys. Entities live for
// DefaultEntityTTL, the collection for DefaultCollectionTTL and searches for
// DefaultSearchTTL. Each can be overridden with an Option.
//
// # Invalidation
//
//   - Create, AddRange: the collection key; Create also stores the new entity
//   - Update, UpdateRange, Delete, DeleteRange: the entity keys and the collection key
//
// Search and count keys are never invalidated. They expire on their TTL, so a
// search may return results up to DefaultSearchTTL old.
//
// # Failures
//
// Repository errors reach the caller unchanged and are never cached. Cache
// failures are absorbed by cache.Client; the decorator then behaves like the
// wrapped repository. Concurrent misses on the same key share one load.
//
// WithCacheBypass forces a read to go to the repository. The fresh value
// still repopulates the cache.
package repositorycache
