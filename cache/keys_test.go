package cache_test

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-service-core/cache"
)

type Auction struct{}

type Page[T any] struct{}

func TestKeysLayout(t *testing.T) {
	keys := cache.NewKeys("auction", "Auction")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "id", got: keys.ID("5f0c"), want: "auction:auction:5f0c"},
		{name: "all", got: keys.All(), want: "auction:auction:all"},
		{name: "search", got: keys.Search("abc123"), want: "auction:auction:search:abc123"},
		{name: "count", got: keys.Count("abc123"), want: "auction:auction:count:abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, tt.got)
			}
		})
	}
}

func TestKeysSearchAndCountDoNotOverlap(t *testing.T) {
	keys := cache.NewKeys("search", "item")
	fp := cache.Fingerprint(cache.F("text", "lamp"))

	if keys.Search(fp) == keys.Count(fp) {
		t.Fatal("expected search and count keys to differ")
	}
	if strings.HasPrefix(keys.Search(fp), keys.All()) {
		t.Fatal("search keys must not live under the collection key")
	}
}

func TestEntityName(t *testing.T) {
	if got := cache.EntityName[Auction](); got != "auction" {
		t.Fatalf("expected auction, got %q", got)
	}
	if got := cache.EntityName[*Auction](); got != "auction" {
		t.Fatalf("expected pointer to be dereferenced, got %q", got)
	}
	if got := cache.EntityName[Page[Auction]](); got != "page" {
		t.Fatalf("expected type arguments to be dropped, got %q", got)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := cache.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate: %v", err)
	}
	if !(cfg.SearchTTL < cfg.CollectionTTL && cfg.CollectionTTL < cfg.EntityTTL) {
		t.Fatal("expected search < collection < entity ttl ordering")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cache.Config)
		field  string
	}{
		{name: "unknown backend", mutate: func(c *cache.Config) { c.Backend = "memcached" }, field: "Backend"},
		{name: "missing prefix", mutate: func(c *cache.Config) { c.Prefix = "" }, field: "Prefix"},
		{name: "unknown codec", mutate: func(c *cache.Config) { c.Codec = "gob" }, field: "Codec"},
		{name: "search ttl too long", mutate: func(c *cache.Config) { c.SearchTTL = c.EntityTTL }, field: "SearchTTL"},
		{name: "collection ttl too long", mutate: func(c *cache.Config) { c.CollectionTTL = time.Hour }, field: "CollectionTTL"},
		{name: "redis without addr", mutate: func(c *cache.Config) {
			c.Backend = cache.BackendRedis
			c.Redis.Addr = ""
		}, field: "Redis"},
		{name: "local without capacity", mutate: func(c *cache.Config) {
			c.Backend = cache.BackendLocal
			c.Local.Capacity = 0
		}, field: "Local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cache.DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("expected error to mention %q, got %v", tt.field, err)
			}
		})
	}
}

func TestConfigRedisNotCheckedForOtherBackends(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Redis.Addr = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected memory backend to ignore redis settings: %v", err)
	}
}
