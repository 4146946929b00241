package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-service-core/cache"
	"github.com/goliatone/go-service-core/internal/cacheinfra"
	"github.com/goliatone/go-service-core/repositorycache"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
)

// Container provides dependency injection for cache related components.
// It owns the cache backend and the cache client built on it, and provides
// factory functions for cached repositories sharing them.
type Container struct {
	config     cache.Config
	backend    cacheinfra.Backend
	client     *cache.Client
	metrics    *cache.Metrics
	logger     *slog.Logger
	registerer prometheus.Registerer

	mu      sync.Mutex
	closers []io.Closer
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger handed to the cache client and repositories.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegisterer registers the cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// WithBackend uses backend instead of building one from the configuration.
// The container takes ownership and closes it.
func WithBackend(backend cacheinfra.Backend) Option {
	return func(c *Container) {
		c.backend = backend
	}
}

// NewContainer creates a new DI container with the provided cache configuration.
// It builds the configured backend and a cache client with the configured codec.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}

	c := &Container{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	codec, err := cache.CodecByName(config.Codec)
	if err != nil {
		return nil, err
	}

	if c.backend == nil {
		backend, err := cacheinfra.New(config)
		if err != nil {
			return nil, err
		}
		c.backend = backend
	}

	c.metrics = cache.NewMetrics(c.registerer)
	c.client = cache.NewClient(c.backend,
		cache.WithCodec(codec),
		cache.WithLogger(c.logger),
		cache.WithMetrics(c.metrics),
	)
	c.closers = append(c.closers, c.backend)

	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
// This is a convenience constructor for tests and local tooling.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// Client returns the shared cache client.
func (c *Container) Client() *cache.Client {
	return c.client
}

// Backend returns the cache backend owned by the container.
func (c *Container) Backend() cacheinfra.Backend {
	return c.backend
}

func (c *Container) Metrics() *cache.Metrics {
	return c.metrics
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Ping checks the cache backend.
func (c *Container) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

// Own hands closer to the container; it is closed by Close in reverse
// registration order.
func (c *Container) Own(closer io.Closer) {
	if closer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, closer)
}

// Close releases every owned resource and reports all failures together.
func (c *Container) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var result *multierror.Error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (c *Container) repositoryOptions(extra []repositorycache.Option) []repositorycache.Option {
	opts := []repositorycache.Option{
		repositorycache.WithTTLs(c.config),
		repositorycache.WithLogger(c.logger),
		repositorycache.WithMetrics(c.metrics),
	}
	return append(opts, extra...)
}

// NewCachedRepository wraps base with the shared cache client, the
// configured prefix and TTLs.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedRepository[*Auction](container, store)
func NewCachedRepository[T repositorycache.Entity](container *Container, base repositorycache.Repository[T], opts ...repositorycache.Option) *repositorycache.CachedRepository[T] {
	return repositorycache.New(base, container.client, container.config.Prefix, container.repositoryOptions(opts)...)
}

// NewCachedSearchRepository is NewCachedRepository for search repositories.
func NewCachedSearchRepository[T repositorycache.Entity, Q any](container *Container, base repositorycache.SearchRepository[T, Q], opts ...repositorycache.Option) *repositorycache.CachedSearchRepository[T, Q] {
	return repositorycache.NewSearch(base, container.client, container.config.Prefix, container.repositoryOptions(opts)...)
}
