// Package cache provides the typed cache client, key layout and query
// fingerprinting shared by the cached repositories.
//
// # Overview
//
// The package exports three building blocks:
//
//   - Client: typed Get/Set/Remove/Exists/Refresh on top of a byte oriented
//     Backend. Every failure is absorbed, so a broken cache degrades to a
//     slower service instead of a failing one.
//   - Keys: the {prefix}:{entity}:... key layout that reads and invalidations
//     agree on.
//   - Fingerprint: a deterministic, collision resistant digest of query
//     parameters used to key search results.
//
// Backends (redis, in-memory ttlcache, sharded sturdyc) live in
// internal/cacheinfra and are selected through Config.
//
// # Basic Usage
//
//	client := cache.NewClient(backend, cache.WithLogger(logger))
//	keys := cache.NewKeys("auction", "Auction")
//
//	cache.Set(ctx, client, keys.ID(id), auction, 10*time.Minute)
//	if a, ok := cache.Get[*Auction](ctx, client, keys.ID(id)); ok {
//		return a, nil
//	}
//
// # Fingerprints
//
// Query parameters are rendered into a canonical form before hashing. Field
// names are snake_cased and sorted, empty values are dropped and every name
// and value is length prefixed:
//
//	cache.Canonical(cache.F("text", "red car"), cache.F("take", 20))
//	// 4:take=2:20;4:text=7:red car;
//
// Two queries that differ in any non-empty parameter therefore never share a
// key, regardless of separator characters inside the values.
//
// # See Also
//
// For the cache-aside decorators built on top of this package, see the
// repositorycache package.
package cache
