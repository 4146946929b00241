// Package search is the search index service: indexed catalogue items,
// parameterized queries over them and the service operations behind the
// HTTP handlers.
package search

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-service-core/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// CachePrefix namespaces the search service's cache keys.
const CachePrefix = "search"

// Item is one indexed catalogue entry. Source and SourceID identify the
// record in the owning service.
type Item struct {
	bun.BaseModel `bun:"table:search_items,alias:si" json:"-" msgpack:"-"`
	model.Base

	Title        string          `json:"title" msgpack:"title" bun:"title,notnull"`
	Description  string          `json:"description" msgpack:"description" bun:"description"`
	Category     string          `json:"category" msgpack:"category" bun:"category"`
	Tags         string          `json:"tags" msgpack:"tags" bun:"tags"`
	ImageURL     string          `json:"imageUrl" msgpack:"imageUrl" bun:"image_url"`
	Price        decimal.Decimal `json:"price" msgpack:"price" bun:"price,type:numeric"`
	Status       string          `json:"status" msgpack:"status" bun:"status"`
	Source       string          `json:"source" msgpack:"source" bun:"source,notnull"`
	SourceID     uuid.UUID       `json:"sourceId" msgpack:"sourceId" bun:"source_id,type:uuid"`
	LastIndexed  *time.Time      `json:"lastIndexed,omitempty" msgpack:"lastIndexed,omitempty" bun:"last_indexed,nullzero"`
	SearchVector string          `json:"-" msgpack:"searchVector" bun:"search_vector"`
}

func (i *Item) Clone() *Item {
	c := *i
	if i.LastIndexed != nil {
		t := *i.LastIndexed
		c.LastIndexed = &t
	}
	if i.UpdatedAt != nil {
		t := *i.UpdatedAt
		c.UpdatedAt = &t
	}
	if i.DeletedAt != nil {
		t := *i.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func (i *Item) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&i.Source, validation.Required),
		validation.Field(&i.SourceID, validation.By(notNilUUID)),
		validation.Field(&i.Price, validation.By(nonNegative)),
	)
}

// Index refreshes the denormalized search text.
func (i *Item) Index(at time.Time) {
	i.SearchVector = strings.ToLower(strings.Join([]string{i.Title, i.Description, i.Category, i.Tags}, " "))
	i.LastIndexed = &at
}

func notNilUUID(value any) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

func nonNegative(value any) error {
	if d, ok := value.(decimal.Decimal); ok && d.IsNegative() {
		return validation.NewError("validation_min_greater_equal_than_required", "must be no less than 0")
	}
	return nil
}
