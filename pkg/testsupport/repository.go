package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-service-core/internal/memstore"
	"github.com/goliatone/go-service-core/repositorycache"
	"github.com/google/uuid"
)

// CountingRepository wraps a repository, counts calls per method and can
// fail or hold read calls on demand.
type CountingRepository[T repositorycache.Entity] struct {
	base repositorycache.Repository[T]

	mu       sync.Mutex
	calls    map[string]int
	readErr  error
	writeErr error
	gate     <-chan struct{}
}

// NewCountingRepository wraps base.
func NewCountingRepository[T repositorycache.Entity](base repositorycache.Repository[T]) *CountingRepository[T] {
	return &CountingRepository[T]{base: base, calls: make(map[string]int)}
}

// NewWidgetStore returns a counting repository over an in-memory widget store.
func NewWidgetStore() (*CountingRepository[*Widget], *memstore.Store[*Widget]) {
	store := memstore.New[*Widget]("widget")
	return NewCountingRepository[*Widget](store), store
}

// FailReads makes every read return err until called again with nil.
func (r *CountingRepository[T]) FailReads(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readErr = err
}

// FailWrites makes every write return err until called again with nil.
func (r *CountingRepository[T]) FailWrites(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErr = err
}

// HoldReads blocks reads until gate is closed or their ctx ends. A nil gate
// releases the hold.
func (r *CountingRepository[T]) HoldReads(gate <-chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = gate
}

// Calls returns how many times method was called.
func (r *CountingRepository[T]) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// Reset clears the call counters.
func (r *CountingRepository[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make(map[string]int)
}

func (r *CountingRepository[T]) read(ctx context.Context, method string) error {
	r.mu.Lock()
	r.calls[method]++
	err, gate := r.readErr, r.gate
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (r *CountingRepository[T]) write(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[method]++
	return r.writeErr
}

func (r *CountingRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	if err := r.read(ctx, "GetByID"); err != nil {
		var zero T
		return zero, err
	}
	return r.base.GetByID(ctx, id)
}

func (r *CountingRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := r.read(ctx, "GetAll"); err != nil {
		return nil, err
	}
	return r.base.GetAll(ctx)
}

func (r *CountingRepository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.read(ctx, "Exists"); err != nil {
		return false, err
	}
	return r.base.Exists(ctx, id)
}

func (r *CountingRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	if err := r.write("Create"); err != nil {
		var zero T
		return zero, err
	}
	return r.base.Create(ctx, entity)
}

func (r *CountingRepository[T]) AddRange(ctx context.Context, entities []T) ([]T, error) {
	if err := r.write("AddRange"); err != nil {
		return nil, err
	}
	return r.base.AddRange(ctx, entities)
}

func (r *CountingRepository[T]) Update(ctx context.Context, entity T) (T, error) {
	if err := r.write("Update"); err != nil {
		var zero T
		return zero, err
	}
	return r.base.Update(ctx, entity)
}

func (r *CountingRepository[T]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	if err := r.write("UpdateRange"); err != nil {
		return nil, err
	}
	return r.base.UpdateRange(ctx, entities)
}

func (r *CountingRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.write("Delete"); err != nil {
		return err
	}
	return r.base.Delete(ctx, id)
}

func (r *CountingRepository[T]) DeleteRange(ctx context.Context, ids []uuid.UUID) error {
	if err := r.write("DeleteRange"); err != nil {
		return err
	}
	return r.base.DeleteRange(ctx, ids)
}

// CountingSearchRepository adds counted search methods answered by a
// caller supplied function.
type CountingSearchRepository[T repositorycache.Entity, Q any] struct {
	*CountingRepository[T]
	search func(ctx context.Context, query Q) ([]T, error)
}

// NewCountingSearchRepository wraps base; search answers Search and, through
// its length, SearchCount.
func NewCountingSearchRepository[T repositorycache.Entity, Q any](base repositorycache.Repository[T], search func(ctx context.Context, query Q) ([]T, error)) *CountingSearchRepository[T, Q] {
	return &CountingSearchRepository[T, Q]{
		CountingRepository: NewCountingRepository(base),
		search:             search,
	}
}

func (r *CountingSearchRepository[T, Q]) Search(ctx context.Context, query Q) ([]T, error) {
	if err := r.read(ctx, "Search"); err != nil {
		return nil, err
	}
	return r.search(ctx, query)
}

func (r *CountingSearchRepository[T, Q]) SearchCount(ctx context.Context, query Q) (int, error) {
	if err := r.read(ctx, "SearchCount"); err != nil {
		return 0, err
	}
	items, err := r.search(ctx, query)
	return len(items), err
}
