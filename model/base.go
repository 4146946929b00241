// Package model holds the entity base shared by every service entity.
package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Base carries the identifier and audit trail of a persisted entity.
// Deletion is soft: DeletedAt is set and the row stays in the store.
type Base struct {
	ID        uuid.UUID  `json:"id" msgpack:"id" bun:"id,pk,type:uuid"`
	CreatedAt time.Time  `json:"createdAt" msgpack:"createdAt" bun:"created_at,nullzero,notnull,default:current_timestamp"`
	CreatedBy uuid.UUID  `json:"createdBy" msgpack:"createdBy" bun:"created_by,type:uuid"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" msgpack:"updatedAt,omitempty" bun:"updated_at,nullzero"`
	UpdatedBy uuid.UUID  `json:"updatedBy" msgpack:"updatedBy" bun:"updated_by,type:uuid"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" msgpack:"deletedAt,omitempty" bun:"deleted_at,soft_delete,nullzero"`
	DeletedBy uuid.UUID  `json:"deletedBy" msgpack:"deletedBy" bun:"deleted_by,type:uuid"`
}

// GetID returns the entity identifier.
func (b *Base) GetID() uuid.UUID { return b.ID }

// SetID assigns the entity identifier.
func (b *Base) SetID(id uuid.UUID) { b.ID = id }

// Audit exposes the embedded base so stores can stamp audit fields
// without knowing the concrete entity.
func (b *Base) Audit() *Base { return b }

// IsDeleted reports whether the entity was soft deleted.
func (b *Base) IsDeleted() bool { return b.DeletedAt != nil }

// MarkCreated stamps creation fields.
func (b *Base) MarkCreated(at time.Time, actor uuid.UUID) {
	b.CreatedAt = at
	b.CreatedBy = actor
}

// MarkUpdated stamps update fields.
func (b *Base) MarkUpdated(at time.Time, actor uuid.UUID) {
	b.UpdatedAt = &at
	b.UpdatedBy = actor
}

// MarkDeleted soft deletes the entity.
func (b *Base) MarkDeleted(at time.Time, actor uuid.UUID) {
	b.DeletedAt = &at
	b.DeletedBy = actor
}

type actorContextKey struct{}

// WithActor records the acting user for audit fields written during ctx.
func WithActor(ctx context.Context, actor uuid.UUID) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the acting user, or uuid.Nil for system writes.
func ActorFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if actor, ok := ctx.Value(actorContextKey{}).(uuid.UUID); ok {
		return actor
	}
	return uuid.Nil
}
