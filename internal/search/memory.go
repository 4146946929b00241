package search

import (
	"context"
	"strings"

	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/internal/memstore"
	"github.com/google/uuid"
)

// MemoryRepository answers searches by scanning an in-memory store.
type MemoryRepository struct {
	*memstore.Store[*Item]
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{Store: memstore.New[*Item]("search item")}
}

func (r *MemoryRepository) Search(ctx context.Context, q Query) ([]*Item, error) {
	q = q.Normalize()
	items, err := r.Filter(ctx, q.Match)
	if err != nil {
		return nil, err
	}
	if q.Skip >= len(items) {
		return []*Item{}, nil
	}
	end := q.Skip + q.Take
	if end > len(items) {
		end = len(items)
	}
	return items[q.Skip:end], nil
}

func (r *MemoryRepository) SearchCount(ctx context.Context, q Query) (int, error) {
	items, err := r.Filter(ctx, q.Normalize().Match)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *MemoryRepository) GetBySourceID(ctx context.Context, source string, sourceID uuid.UUID) (*Item, error) {
	items, err := r.Filter(ctx, func(i *Item) bool {
		return i.SourceID == sourceID && strings.EqualFold(i.Source, source)
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.NotFound("search item for %s %s was not found", source, sourceID)
	}
	return items[0], nil
}
