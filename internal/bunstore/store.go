// Package bunstore adapts a go-repository-bun repository to the repository
// contract used by the cached decorators.
//
// Deletion is soft: Delete stamps DeletedAt and DeletedBy and relies on the
// soft_delete tag of model.Base to hide the row from later selects.
//
// Updates write every column of the record. The repository's update omits
// zero values, which would otherwise drop a field cleared back to zero.
package bunstore

import (
	"context"
	"reflect"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/model"
	"github.com/goliatone/go-service-core/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Backend is the subset of repository.Repository the store needs.
type Backend[T any] interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error)
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error)
	Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error)
	CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error)
	Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error)
}

// Record is an entity with an audit trail.
type Record interface {
	repositorycache.Entity
	Audit() *model.Base
}

// Option configures a Store.
type Option func(*options)

type options struct {
	isNotFound func(error) bool
	now        func() time.Time
	tx         repository.TransactionManager
}

// WithNotFound sets how backend errors for missing rows are recognised.
func WithNotFound(fn func(error) bool) Option {
	return func(o *options) {
		if fn != nil {
			o.isNotFound = fn
		}
	}
}

// WithClock replaces the time source used for audit stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTransactions runs range writes in one transaction of tm, so a failure
// part way leaves none of the range applied. *bun.DB is a TransactionManager.
func WithTransactions(tm repository.TransactionManager) Option {
	return func(o *options) {
		o.tx = tm
	}
}

// IsRecordNotFound is the default not found check. It accepts the
// repository's record not found error, a bare sql.ErrNoRows and apperr's
// NotFound.
func IsRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || apperr.IsNotFound(err)
}

// Store implements repositorycache.Repository over a Backend.
type Store[T Record] struct {
	repo Backend[T]
	name string
	opts options
}

var (
	_ Backend[*model.Base]                    = repository.Repository[*model.Base](nil)
	_ repositorycache.Repository[*model.Base] = (*Store[*model.Base])(nil)
)

// New wraps repo. name is used in not found messages.
func New[T Record](repo Backend[T], name string, opts ...Option) *Store[T] {
	o := options{
		isNotFound: IsRecordNotFound,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{repo: repo, name: name, opts: o}
}

// OrderByCreated sorts like the in-memory store.
func OrderByCreated(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("created_at ASC", "id ASC")
}

// AllRows clears the page size List applies by default.
func AllRows(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Limit(0).Offset(0)
}

// WriteAllColumns makes an update set every data column of record,
// including zero values. Columns tagged skipupdate are left alone.
func WriteAllColumns(record any) repository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		v := reflect.Indirect(reflect.ValueOf(record))
		table := q.DB().Table(v.Type())
		for _, f := range table.DataFields {
			if f.SkipUpdate() {
				continue
			}
			q = q.Value(f.Name, "?", f.Value(v).Interface())
		}
		return q
	}
}

func (s *Store[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	return s.get(ctx, nil, id)
}

func (s *Store[T]) get(ctx context.Context, tx bun.IDB, id uuid.UUID) (T, error) {
	var (
		record T
		err    error
	)
	if tx == nil {
		record, err = s.repo.GetByID(ctx, id.String())
	} else {
		record, err = s.repo.GetByIDTx(ctx, tx, id.String())
	}
	if err != nil {
		var zero T
		if s.opts.isNotFound(err) {
			return zero, apperr.NotFound("%s %s not found", s.name, id)
		}
		return zero, err
	}
	if record.Audit().IsDeleted() {
		var zero T
		return zero, apperr.NotFound("%s %s not found", s.name, id)
	}
	return record, nil
}

func (s *Store[T]) write(ctx context.Context, tx bun.IDB, record T) (T, error) {
	if tx == nil {
		return s.repo.Update(ctx, record, WriteAllColumns(record))
	}
	return s.repo.UpdateTx(ctx, tx, record, WriteAllColumns(record))
}

// inTx runs fn in a transaction when the store has a transaction manager.
// Without one fn gets a nil tx and each write commits on its own.
func (s *Store[T]) inTx(ctx context.Context, fn func(context.Context, bun.IDB) error) error {
	if s.opts.tx == nil {
		return fn(ctx, nil)
	}
	return s.opts.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	records, _, err := s.repo.List(ctx, OrderByCreated, AllRows)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if !r.Audit().IsDeleted() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store[T]) Create(ctx context.Context, entity T) (T, error) {
	s.stampCreated(ctx, s.opts.now(), entity)
	return s.repo.Create(ctx, entity)
}

func (s *Store[T]) AddRange(ctx context.Context, entities []T) ([]T, error) {
	if len(entities) == 0 {
		return []T{}, nil
	}
	now := s.opts.now()
	for _, e := range entities {
		s.stampCreated(ctx, now, e)
	}
	return s.repo.CreateMany(ctx, entities)
}

func (s *Store[T]) Update(ctx context.Context, entity T) (T, error) {
	if err := s.prepareUpdate(ctx, nil, s.opts.now(), entity); err != nil {
		var zero T
		return zero, err
	}
	return s.write(ctx, nil, entity)
}

// UpdateRange checks every entity exists before writing any of them.
func (s *Store[T]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	if len(entities) == 0 {
		return []T{}, nil
	}
	now := s.opts.now()
	out := make([]T, 0, len(entities))
	err := s.inTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		for _, e := range entities {
			if err := s.prepareUpdate(ctx, tx, now, e); err != nil {
				return err
			}
		}
		for _, e := range entities {
			updated, err := s.write(ctx, tx, e)
			if err != nil {
				return err
			}
			out = append(out, updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete soft deletes id. Absent and already deleted ids are a no-op.
func (s *Store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.softDelete(ctx, nil, s.opts.now(), id)
}

// DeleteRange soft deletes every id in one transaction when the store has
// a transaction manager.
func (s *Store[T]) DeleteRange(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	now := s.opts.now()
	return s.inTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		for _, id := range ids {
			if err := s.softDelete(ctx, tx, now, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store[T]) softDelete(ctx context.Context, tx bun.IDB, now time.Time, id uuid.UUID) error {
	current, err := s.get(ctx, tx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	current.Audit().MarkDeleted(now, model.ActorFromContext(ctx))
	_, err = s.write(ctx, tx, current)
	return err
}

func (s *Store[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store[T]) stampCreated(ctx context.Context, now time.Time, entity T) {
	base := entity.Audit()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	base.MarkCreated(now, model.ActorFromContext(ctx))
	base.UpdatedAt, base.DeletedAt = nil, nil
}

func (s *Store[T]) prepareUpdate(ctx context.Context, tx bun.IDB, now time.Time, entity T) error {
	current, err := s.get(ctx, tx, entity.GetID())
	if err != nil {
		return err
	}
	base, prev := entity.Audit(), current.Audit()
	base.CreatedAt, base.CreatedBy = prev.CreatedAt, prev.CreatedBy
	base.DeletedAt, base.DeletedBy = nil, uuid.Nil
	base.MarkUpdated(now, model.ActorFromContext(ctx))
	return nil
}
