package repositorycache

import (
	"context"

	"github.com/goliatone/go-service-core/cache"
	"github.com/google/uuid"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ Repository[Entity] = (*CachedRepository[Entity])(nil)

// CachedRepository decorates a base repository with cache-aside reads and
// write-then-invalidate writes.
type CachedRepository[T Entity] struct {
	base Repository[T]
	read *readPath
}

// New creates a new CachedRepository that wraps the base repository with
// caching. prefix namespaces the keys of one service, e.g. "auction". It
// panics when base, client or prefix is missing.
func New[T Entity](base Repository[T], client *cache.Client, prefix string, opts ...Option) *CachedRepository[T] {
	if base == nil || client == nil || prefix == "" {
		panic("repositorycache: base repository, cache client and prefix are required")
	}
	return &CachedRepository[T]{
		base: base,
		read: newReadPath[T](client, prefix, opts),
	}
}

func newReadPath[T any](client *cache.Client, prefix string, opts []Option) *readPath {
	o := defaultOptions(cache.EntityName[T]())
	for _, opt := range opts {
		opt(&o)
	}
	return &readPath{
		client: client,
		keys:   cache.NewKeys(prefix, o.entity),
		opts:   o,
	}
}

// Keys exposes the key layout used by this repository.
func (c *CachedRepository[T]) Keys() cache.Keys {
	return c.read.keys
}

// GetByID returns the entity with id, from the cache when possible.
func (c *CachedRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	return readThrough(ctx, c.read, "get_by_id", c.read.keys.ID(id.String()), c.read.opts.entityTTL,
		func(ctx context.Context) (T, error) {
			return c.base.GetByID(ctx, id)
		})
}

// GetAll returns every live entity, from the cache when possible.
func (c *CachedRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	return readThrough(ctx, c.read, "get_all", c.read.keys.All(), c.read.opts.collectionTTL,
		func(ctx context.Context) ([]T, error) {
			return c.base.GetAll(ctx)
		})
}

// Create stores entity, drops the collection entry and caches the created
// value so the next read of it is a hit.
func (c *CachedRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	created, err := c.base.Create(ctx, entity)
	if err != nil {
		return created, err
	}

	c.read.invalidate(ctx, "create", c.read.keys.All())
	if !isAbsent(created) {
		cache.Set(context.WithoutCancel(ctx), c.read.client, c.read.keys.ID(created.GetID().String()), created, c.read.opts.entityTTL)
	}
	return created, nil
}

// AddRange creates entities in one store call.
func (c *CachedRepository[T]) AddRange(ctx context.Context, entities []T) ([]T, error) {
	created, err := c.base.AddRange(ctx, entities)
	if err != nil {
		return created, err
	}

	c.read.invalidate(ctx, "add_range", c.idKeysOf(created)...)
	return created, nil
}

// Update stores entity and drops its entry and the collection entry.
func (c *CachedRepository[T]) Update(ctx context.Context, entity T) (T, error) {
	updated, err := c.base.Update(ctx, entity)
	if err != nil {
		return updated, err
	}

	c.read.invalidate(ctx, "update", c.read.keys.ID(entity.GetID().String()), c.read.keys.All())
	return updated, nil
}

// UpdateRange updates entities in one store call.
func (c *CachedRepository[T]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	updated, err := c.base.UpdateRange(ctx, entities)
	if err != nil {
		return updated, err
	}

	c.read.invalidate(ctx, "update_range", c.idKeysOf(entities)...)
	return updated, nil
}

// Delete soft deletes id.
func (c *CachedRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}

	c.read.invalidate(ctx, "delete", c.read.keys.ID(id.String()), c.read.keys.All())
	return nil
}

// DeleteRange soft deletes ids.
func (c *CachedRepository[T]) DeleteRange(ctx context.Context, ids []uuid.UUID) error {
	if err := c.base.DeleteRange(ctx, ids); err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, c.read.keys.ID(id.String()))
	}
	keys = append(keys, c.read.keys.All())

	c.read.invalidate(ctx, "delete_range", keys...)
	return nil
}

// Exists answers from a cached entity entry when there is one. Entries are
// dropped on delete, so a present entry means a live entity.
func (c *CachedRepository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if !cacheBypassed(ctx) && c.read.client.Exists(ctx, c.read.keys.ID(id.String())) {
		c.read.opts.metrics.Hit(c.read.opts.entity, "exists")
		return true, nil
	}
	c.read.opts.metrics.Miss(c.read.opts.entity, "exists")
	return c.base.Exists(ctx, id)
}

// idKeysOf lists the id keys of entities followed by the collection key.
func (c *CachedRepository[T]) idKeysOf(entities []T) []string {
	keys := make([]string, 0, len(entities)+1)
	for _, e := range entities {
		if isAbsent(e) {
			continue
		}
		keys = append(keys, c.read.keys.ID(e.GetID().String()))
	}
	return append(keys, c.read.keys.All())
}
