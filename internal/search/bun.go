package search

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/internal/bunstore"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository stores items in postgres. CRUD goes through
// go-repository-bun; searches are built directly on bun.
type BunRepository struct {
	*bunstore.Store[*Item]
	db bun.IDB
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db *bun.DB) *BunRepository {
	handlers := repository.ModelHandlers[*Item]{
		NewRecord: func() *Item { return &Item{} },
		GetID: func(i *Item) uuid.UUID {
			if i == nil {
				return uuid.Nil
			}
			return i.ID
		},
		SetID: func(i *Item, id uuid.UUID) { i.ID = id },
		GetIdentifier: func() string {
			return "source_id"
		},
	}
	return &BunRepository{
		Store: bunstore.New[*Item](repository.NewRepository[*Item](db, handlers), "search item", bunstore.WithTransactions(db)),
		db:    db,
	}
}

// CreateSchema creates the search_items table when it does not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*Item)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *BunRepository) Search(ctx context.Context, q Query) ([]*Item, error) {
	q = q.Normalize()
	items := make([]*Item, 0, q.Take)
	if err := r.searchQuery(q, &items).Offset(q.Skip).Limit(q.Take).Scan(ctx); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BunRepository) SearchCount(ctx context.Context, q Query) (int, error) {
	return r.searchQuery(q.Normalize(), (*Item)(nil)).Count(ctx)
}

func (r *BunRepository) GetBySourceID(ctx context.Context, source string, sourceID uuid.UUID) (*Item, error) {
	item := new(Item)
	err := r.db.NewSelect().
		Model(item).
		Where("?TableAlias.source = ?", source).
		Where("?TableAlias.source_id = ?", sourceID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if bunstore.IsRecordNotFound(err) {
			return nil, apperr.NotFound("search item for %s %s was not found", source, sourceID)
		}
		return nil, err
	}
	return item, nil
}

// searchQuery applies the filters of q. Soft deleted rows are excluded by
// the model's soft_delete column.
func (r *BunRepository) searchQuery(q Query, model any) *bun.SelectQuery {
	sel := r.db.NewSelect().Model(model)

	if q.Text != "" {
		pattern := "%" + q.Text + "%"
		sel = sel.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
			return g.Where("?TableAlias.title ILIKE ?", pattern).
				WhereOr("?TableAlias.description ILIKE ?", pattern).
				WhereOr("?TableAlias.tags ILIKE ?", pattern)
		})
	}
	if q.Category != "" {
		sel = sel.Where("lower(?TableAlias.category) = lower(?)", q.Category)
	}
	if q.MinPrice != nil {
		sel = sel.Where("?TableAlias.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		sel = sel.Where("?TableAlias.price <= ?", *q.MaxPrice)
	}
	if q.Status != "" {
		sel = sel.Where("lower(?TableAlias.status) = lower(?)", q.Status)
	}
	if q.Source != "" {
		sel = sel.Where("lower(?TableAlias.source) = lower(?)", q.Source)
	}
	return sel.Order("created_at ASC", "id ASC")
}
