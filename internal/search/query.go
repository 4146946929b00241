package search

import (
	"strings"

	"github.com/goliatone/go-service-core/cache"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query filters and pages items. Empty filters match everything.
type Query struct {
	Text     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Status   string
	Source   string
	Skip     int
	Take     int
}

type QueryOption func(*Query)

func NewQuery(opts ...QueryOption) Query {
	q := Query{Take: DefaultPageSize}
	for _, opt := range opts {
		opt(&q)
	}
	return q.Normalize()
}

func WithText(text string) QueryOption {
	return func(q *Query) { q.Text = text }
}

func WithCategory(category string) QueryOption {
	return func(q *Query) { q.Category = category }
}

// WithPriceRange bounds the price; nil leaves a side open.
func WithPriceRange(min, max *decimal.Decimal) QueryOption {
	return func(q *Query) { q.MinPrice, q.MaxPrice = min, max }
}

func WithStatus(status string) QueryOption {
	return func(q *Query) { q.Status = status }
}

func WithSource(source string) QueryOption {
	return func(q *Query) { q.Source = source }
}

// WithPage selects a 1-based page of size items.
func WithPage(page, size int) QueryOption {
	return func(q *Query) {
		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = DefaultPageSize
		}
		q.Skip, q.Take = (page-1)*size, size
	}
}

// Normalize trims text filters and clamps paging.
func (q Query) Normalize() Query {
	q.Text = strings.Join(strings.Fields(q.Text), " ")
	q.Category = strings.TrimSpace(q.Category)
	q.Status = strings.TrimSpace(q.Status)
	q.Source = strings.TrimSpace(q.Source)
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Take <= 0 {
		q.Take = DefaultPageSize
	}
	if q.Take > MaxPageSize {
		q.Take = MaxPageSize
	}
	return q
}

// Unpaged drops paging, for counts.
func (q Query) Unpaged() Query {
	q.Skip, q.Take = 0, 0
	return q
}

// Page is the 1-based page the query selects.
func (q Query) Page() int {
	if q.Take <= 0 {
		return 1
	}
	return q.Skip/q.Take + 1
}

func (q Query) CacheFields() []cache.Field {
	return []cache.Field{
		cache.F("text", q.Text),
		cache.F("category", q.Category),
		cache.F("min_price", q.MinPrice),
		cache.F("max_price", q.MaxPrice),
		cache.F("status", q.Status),
		cache.F("source", q.Source),
		cache.F("skip", q.Skip),
		cache.F("take", q.Take),
	}
}

// Match reports whether item passes the filters of q. Paging is ignored.
func (q Query) Match(item *Item) bool {
	if q.Text != "" {
		text := strings.ToLower(q.Text)
		if !containsFold(item.Title, text) && !containsFold(item.Description, text) && !containsFold(item.Tags, text) {
			return false
		}
	}
	if q.Category != "" && !strings.EqualFold(item.Category, q.Category) {
		return false
	}
	if q.MinPrice != nil && item.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && item.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	if q.Status != "" && !strings.EqualFold(item.Status, q.Status) {
		return false
	}
	if q.Source != "" && !strings.EqualFold(item.Source, q.Source) {
		return false
	}
	return true
}

func containsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}
