package cache

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Backend names accepted in Config.Backend.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendLocal  = "local"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	// Backend selects the store: redis, memory (per-key TTL, single process)
	// or local (sharded sturdyc cache, single TTL).
	Backend string `mapstructure:"backend"`
	// Prefix namespaces every key of a service, e.g. "auction".
	Prefix string `mapstructure:"prefix"`
	Codec  string `mapstructure:"codec"`

	// DefaultTTL is the backend side expiration used when a caller does not
	// ask for one.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	// EntityTTL applies to single entity entries.
	EntityTTL time.Duration `mapstructure:"entity_ttl"`
	// CollectionTTL applies to full collection entries. Collections change
	// on every write so they live shorter than entities.
	CollectionTTL time.Duration `mapstructure:"collection_ttl"`
	// SearchTTL applies to parameterized query results. Those are never
	// invalidated explicitly, so this bounds how stale they can get.
	SearchTTL time.Duration `mapstructure:"search_ttl"`

	Redis RedisConfig `mapstructure:"redis"`
	Local LocalConfig `mapstructure:"local"`
}

// RedisConfig holds the connection settings of the redis backend.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LocalConfig mirrors the sturdyc sizing options.
type LocalConfig struct {
	Capacity           int `mapstructure:"capacity"`
	NumShards          int `mapstructure:"num_shards"`
	EvictionPercentage int `mapstructure:"eviction_percentage"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendMemory,
		Prefix:        "app",
		Codec:         CodecJSON,
		DefaultTTL:    10 * time.Minute,
		EntityTTL:     10 * time.Minute,
		CollectionTTL: 5 * time.Minute,
		SearchTTL:     2 * time.Minute,
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Local: LocalConfig{
			Capacity:           10000,
			NumShards:          256,
			EvictionPercentage: 10,
		},
	}
}

var (
	errSearchTTL     = errors.New("must be shorter than entity_ttl")
	errCollectionTTL = errors.New("must not exceed entity_ttl")
)

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendRedis, BackendMemory, BackendLocal)),
		validation.Field(&c.Prefix, validation.Required),
		validation.Field(&c.Codec, validation.In(CodecJSON, CodecMsgpack)),
		validation.Field(&c.DefaultTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.EntityTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.CollectionTTL, validation.Required, validation.Min(time.Second),
			validation.By(func(any) error {
				if c.CollectionTTL > c.EntityTTL {
					return errCollectionTTL
				}
				return nil
			})),
		validation.Field(&c.SearchTTL, validation.Required, validation.Min(time.Second),
			validation.By(func(any) error {
				if c.SearchTTL >= c.EntityTTL {
					return errSearchTTL
				}
				return nil
			})),
		validation.Field(&c.Redis, validation.Skip.When(c.Backend != BackendRedis)),
		validation.Field(&c.Local, validation.Skip.When(c.Backend != BackendLocal)),
	)
}

// Validate checks the redis connection settings.
func (c RedisConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}

// Validate checks the sturdyc sizing options.
func (c LocalConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}
