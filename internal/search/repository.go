package search

import (
	"context"

	"github.com/goliatone/go-service-core/repositorycache"
	"github.com/google/uuid"
)

// Repository is the search index persistence contract.
type Repository interface {
	repositorycache.SearchRepository[*Item, Query]
	// GetBySourceID finds the entry indexing sourceID of source.
	GetBySourceID(ctx context.Context, source string, sourceID uuid.UUID) (*Item, error)
}

// CachedRepository caches CRUD and searches. GetBySourceID is rare (index
// maintenance) and always reaches the store.
type CachedRepository struct {
	*repositorycache.CachedSearchRepository[*Item, Query]
	base Repository
}

var _ Repository = (*CachedRepository)(nil)

// Cached pairs cached with the repository it wraps.
func Cached(base Repository, cached *repositorycache.CachedSearchRepository[*Item, Query]) *CachedRepository {
	return &CachedRepository{CachedSearchRepository: cached, base: base}
}

func (r *CachedRepository) GetBySourceID(ctx context.Context, source string, sourceID uuid.UUID) (*Item, error) {
	return r.base.GetBySourceID(ctx, source, sourceID)
}
