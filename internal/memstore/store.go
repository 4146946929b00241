// Package memstore is an in-process, soft deleting implementation of the
// repository contract. It backs the memory mode of the CLI and the tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/model"
	"github.com/goliatone/go-service-core/repositorycache"
	"github.com/google/uuid"
)

// Record is an entity the store can stamp and copy. Clone must return a deep
// enough copy that mutating it never changes the stored value.
type Record[T any] interface {
	repositorycache.Entity
	Audit() *model.Base
	Clone() T
}

// Store keeps entities in a map guarded by a RWMutex.
type Store[T Record[T]] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]T
	name  string
	now   func() time.Time
}

// New returns an empty store. name is used in not found messages.
func New[T Record[T]](name string) *Store[T] {
	return &Store[T]{
		items: make(map[uuid.UUID]T),
		name:  name,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for audit stamps.
func (s *Store[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.live(id)
	if !ok {
		return zero, s.notFound(id)
	}
	return item.Clone(), nil
}

// GetAll returns the live entities ordered by creation time, then id.
func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.Filter(ctx, nil)
}

// Filter returns the live entities accepted by match (all when match is
// nil), ordered like GetAll.
func (s *Store[T]) Filter(ctx context.Context, match func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if item.Audit().IsDeleted() {
			continue
		}
		if match != nil && !match(item) {
			continue
		}
		out = append(out, item.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Audit(), out[j].Audit()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

// Create assigns an id when the entity has none and stamps creation fields.
func (s *Store[T]) Create(ctx context.Context, entity T) (T, error) {
	created, err := s.AddRange(ctx, []T{entity})
	if err != nil {
		var zero T
		return zero, err
	}
	return created[0], nil
}

// AddRange creates all entities or none.
func (s *Store[T]) AddRange(ctx context.Context, entities []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actor := model.ActorFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	staged := make([]T, 0, len(entities))
	seen := make(map[uuid.UUID]struct{}, len(entities))
	for _, entity := range entities {
		item := entity.Clone()
		base := item.Audit()
		if base.ID == uuid.Nil {
			base.ID = uuid.New()
		}
		if _, ok := s.items[base.ID]; ok {
			return nil, apperr.Conflict("%s %s already exists", s.name, base.ID)
		}
		if _, ok := seen[base.ID]; ok {
			return nil, apperr.Conflict("%s %s appears twice in the batch", s.name, base.ID)
		}
		seen[base.ID] = struct{}{}

		base.MarkCreated(now, actor)
		base.UpdatedAt, base.DeletedAt = nil, nil
		staged = append(staged, item)
	}

	out := make([]T, 0, len(staged))
	for _, item := range staged {
		s.items[item.GetID()] = item
		out = append(out, item.Clone())
	}
	return out, nil
}

// Update replaces a live entity. Creation and deletion fields are kept from
// the stored copy.
func (s *Store[T]) Update(ctx context.Context, entity T) (T, error) {
	updated, err := s.UpdateRange(ctx, []T{entity})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated[0], nil
}

// UpdateRange updates all entities or none.
func (s *Store[T]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actor := model.ActorFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	staged := make([]T, 0, len(entities))
	for _, entity := range entities {
		current, ok := s.live(entity.GetID())
		if !ok {
			return nil, s.notFound(entity.GetID())
		}

		item := entity.Clone()
		base, prev := item.Audit(), current.Audit()
		base.CreatedAt, base.CreatedBy = prev.CreatedAt, prev.CreatedBy
		base.DeletedAt, base.DeletedBy = nil, uuid.Nil
		base.MarkUpdated(now, actor)
		staged = append(staged, item)
	}

	out := make([]T, 0, len(staged))
	for _, item := range staged {
		s.items[item.GetID()] = item
		out = append(out, item.Clone())
	}
	return out, nil
}

// Delete soft deletes id. Absent and already deleted ids are a no-op.
func (s *Store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DeleteRange(ctx, []uuid.UUID{id})
}

func (s *Store[T]) DeleteRange(ctx context.Context, ids []uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	actor := model.ActorFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, id := range ids {
		item, ok := s.live(id)
		if !ok {
			continue
		}
		item.Audit().MarkDeleted(now, actor)
	}
	return nil
}

func (s *Store[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.live(id)
	return ok, nil
}

// Len counts stored entities, deleted ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T]) live(id uuid.UUID) (T, bool) {
	item, ok := s.items[id]
	if !ok || item.Audit().IsDeleted() {
		var zero T
		return zero, false
	}
	return item, true
}

func (s *Store[T]) notFound(id uuid.UUID) error {
	return apperr.NotFound("%s %s not found", s.name, id)
}
