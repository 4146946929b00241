package repositorycache

import (
	"context"

	"github.com/google/uuid"
)

// Entity is the only thing the decorators know about a cached type.
type Entity interface {
	GetID() uuid.UUID
}

// Repository is the persistence contract shared by both services. Delete is
// a soft delete in every store shipped with this module; deleting an absent
// or already deleted id is not an error.
//
// GetByID reports a missing entity with an error for which
// apperr.IsNotFound is true.
type Repository[T Entity] interface {
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	AddRange(ctx context.Context, entities []T) ([]T, error)
	Update(ctx context.Context, entity T) (T, error)
	UpdateRange(ctx context.Context, entities []T) ([]T, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteRange(ctx context.Context, ids []uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// SearchRepository adds parameterized queries described by Q. Q must be
// fingerprintable, see cache.FieldsOf.
type SearchRepository[T Entity, Q any] interface {
	Repository[T]
	Search(ctx context.Context, query Q) ([]T, error)
	SearchCount(ctx context.Context, query Q) (int, error)
}
