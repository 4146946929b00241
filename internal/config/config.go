// Package config loads the service configuration from an optional file and
// SERVICECORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-service-core/cache"
	"github.com/goliatone/go-service-core/internal/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable. Dots in keys become
// underscores: "cache.redis.addr" is SERVICECORE_CACHE_REDIS_ADDR.
const EnvPrefix = "SERVICECORE"

const (
	ServiceAuction = "auction"
	ServiceSearch  = "search"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Service string         `mapstructure:"service"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Log     logging.Config `mapstructure:"log"`
	Store   StoreConfig    `mapstructure:"store"`
	Cache   cache.Config   `mapstructure:"cache"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`

	// CreateSchema creates missing tables at startup.
	CreateSchema bool `mapstructure:"create_schema"`
}

// Default returns the configuration used when nothing is set. The cache
// prefix is left empty so it follows the service.
func Default() Config {
	c := cache.DefaultConfig()
	c.Prefix = ""
	return Config{
		Service: ServiceAuction,
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log:   logging.DefaultConfig(),
		Store: StoreConfig{Driver: StoreMemory},
		Cache: c,
	}
}

// Load reads path when given, otherwise an optional servicecore.{yaml,json,toml}
// in the working directory, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("servicecore")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = cfg.Service
	}
	return cfg, nil
}

// WithService switches to another service. A cache prefix that followed the
// old service follows the new one.
func (c Config) WithService(name string) Config {
	if c.Cache.Prefix == c.Service {
		c.Cache.Prefix = name
	}
	c.Service = name
	return c
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Service, validation.Required, validation.In(ServiceAuction, ServiceSearch)),
		validation.Field(&c.HTTP),
		validation.Field(&c.Log),
		validation.Field(&c.Store),
		validation.Field(&c.Cache),
	)
}

func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Addr, validation.Required),
		validation.Field(&h.ShutdownTimeout, validation.Required),
	)
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In(StoreMemory, StorePostgres)),
		validation.Field(&s.DSN, validation.When(s.Driver == StorePostgres, validation.Required)),
	)
}

// bindEnvs registers every key of cfg so environment variables are seen by
// Unmarshal even when the key is absent from the file.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string(nil), parts...), tag)
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Time{}) {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
