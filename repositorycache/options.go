package repositorycache

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-service-core/cache"
)

// Default TTLs. Single entities are invalidated on write and can live long;
// collections change with every write; search results are never invalidated
// and rely on expiry alone.
const (
	DefaultEntityTTL     = 10 * time.Minute
	DefaultCollectionTTL = 5 * time.Minute
	DefaultSearchTTL     = 2 * time.Minute
)

type options struct {
	entity        string
	entityTTL     time.Duration
	collectionTTL time.Duration
	searchTTL     time.Duration
	logger        *slog.Logger
	metrics       *cache.Metrics
}

func defaultOptions(entity string) options {
	return options{
		entity:        entity,
		entityTTL:     DefaultEntityTTL,
		collectionTTL: DefaultCollectionTTL,
		searchTTL:     DefaultSearchTTL,
		logger:        slog.Default(),
	}
}

// Option configures a cached repository.
type Option func(*options)

// WithEntityName overrides the key segment derived from the type name.
func WithEntityName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.entity = name
		}
	}
}

func WithEntityTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.entityTTL = ttl
		}
	}
}

func WithCollectionTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.collectionTTL = ttl
		}
	}
}

func WithSearchTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.searchTTL = ttl
		}
	}
}

// WithTTLs copies the three TTLs from a cache configuration.
func WithTTLs(cfg cache.Config) Option {
	return func(o *options) {
		WithEntityTTL(cfg.EntityTTL)(o)
		WithCollectionTTL(cfg.CollectionTTL)(o)
		WithSearchTTL(cfg.SearchTTL)(o)
	}
}

// WithLogger sets the logger for hit, miss and invalidation entries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(m *cache.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
