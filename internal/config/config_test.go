package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-service-core/cache"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Service != ServiceAuction {
		t.Errorf("expected default service %q, got %q", ServiceAuction, cfg.Service)
	}
	if cfg.Cache.Prefix != ServiceAuction {
		t.Errorf("expected cache prefix to follow the service, got %q", cfg.Cache.Prefix)
	}
	if cfg.Cache.EntityTTL != cache.DefaultConfig().EntityTTL {
		t.Errorf("expected default entity ttl, got %v", cfg.Cache.EntityTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to be valid: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "servicecore.yaml", `
service: search
http:
  addr: ":9090"
log:
  level: debug
  format: json
cache:
  backend: redis
  codec: msgpack
  search_ttl: 90s
  redis:
    addr: redis:6379
    db: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	tests := []struct {
		name      string
		got, want any
	}{
		{"service", cfg.Service, ServiceSearch},
		{"addr", cfg.HTTP.Addr, ":9090"},
		{"log format", cfg.Log.Format, "json"},
		{"backend", cfg.Cache.Backend, cache.BackendRedis},
		{"codec", cfg.Cache.Codec, cache.CodecMsgpack},
		{"search ttl", cfg.Cache.SearchTTL, 90 * time.Second},
		{"redis addr", cfg.Cache.Redis.Addr, "redis:6379"},
		{"redis db", cfg.Cache.Redis.DB, 2},
		{"prefix", cfg.Cache.Prefix, ServiceSearch},
		{"untouched default", cfg.HTTP.ShutdownTimeout, 15 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "servicecore.yaml", "service: auction\n")
	t.Setenv("SERVICECORE_SERVICE", "search")
	t.Setenv("SERVICECORE_CACHE_BACKEND", "local")
	t.Setenv("SERVICECORE_CACHE_LOCAL_CAPACITY", "500")
	t.Setenv("SERVICECORE_CACHE_PREFIX", "catalogue")
	t.Setenv("SERVICECORE_STORE_DSN", "postgres://localhost/app")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Service != ServiceSearch {
		t.Errorf("expected env to override service, got %q", cfg.Service)
	}
	if cfg.Cache.Backend != cache.BackendLocal || cfg.Cache.Local.Capacity != 500 {
		t.Errorf("expected nested env overrides, got %+v", cfg.Cache.Local)
	}
	if cfg.Cache.Prefix != "catalogue" {
		t.Errorf("expected explicit prefix to win, got %q", cfg.Cache.Prefix)
	}
	if cfg.Store.DSN != "postgres://localhost/app" {
		t.Errorf("expected dsn from env, got %q", cfg.Store.DSN)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an explicit missing file to fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown service", func(c *Config) { c.Service = "billing" }, "Service"},
		{"missing addr", func(c *Config) { c.HTTP.Addr = "" }, "HTTP"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, "Store"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = StorePostgres }, "Store"},
		{"postgres with dsn", func(c *Config) {
			c.Store.Driver = StorePostgres
			c.Store.DSN = "postgres://localhost/app"
		}, ""},
		{"bad cache", func(c *Config) { c.Cache.Backend = "memcached" }, "Cache"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "Log"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Cache.Prefix = "auction"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_WithService(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	switched := cfg.WithService(ServiceSearch)
	if switched.Service != ServiceSearch || switched.Cache.Prefix != ServiceSearch {
		t.Errorf("expected prefix to follow the service, got %q/%q", switched.Service, switched.Cache.Prefix)
	}

	cfg.Cache.Prefix = "catalogue"
	if got := cfg.WithService(ServiceSearch).Cache.Prefix; got != "catalogue" {
		t.Errorf("expected explicit prefix to be kept, got %q", got)
	}
}
