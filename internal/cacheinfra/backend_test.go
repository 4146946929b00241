package cacheinfra

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-service-core/cache"
)

// backendFactories lists the backends the conformance suite runs against.
// Redis joins when REDIS_ADDR points at a reachable server.
func backendFactories(t *testing.T) map[string]func(t *testing.T) Backend {
	factories := map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			b, err := NewMemoryBackend(time.Minute, 0)
			if err != nil {
				t.Fatalf("memory backend: %v", err)
			}
			return b
		},
		"sturdyc": func(t *testing.T) Backend {
			b, err := NewSturdycBackend(SturdycConfig{
				Capacity:           100,
				NumShards:          4,
				TTL:                time.Minute,
				EvictionPercentage: 10,
			})
			if err != nil {
				t.Fatalf("sturdyc backend: %v", err)
			}
			return b
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		factories["redis"] = func(t *testing.T) Backend {
			b, err := NewRedisBackend(cache.RedisConfig{Addr: addr, DialTimeout: time.Second}, time.Minute)
			if err != nil {
				t.Fatalf("redis backend: %v", err)
			}
			if err := b.Ping(context.Background()); err != nil {
				t.Skipf("redis not reachable at %s: %v", addr, err)
			}
			return b
		}
	}
	return factories
}

func TestBackendConformance(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)
			t.Cleanup(func() { _ = b.Close() })

			key := "test:" + name + ":" + time.Now().Format(time.RFC3339Nano)

			if _, err := b.Get(ctx, key); !errors.Is(err, cache.ErrCacheMiss) {
				t.Fatalf("expected ErrCacheMiss on absent key, got %v", err)
			}

			if err := b.Set(ctx, key, []byte("payload"), 0); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := b.Get(ctx, key)
			if err != nil || string(got) != "payload" {
				t.Fatalf("expected payload, got %q (%v)", got, err)
			}

			ok, err := b.Exists(ctx, key)
			if err != nil || !ok {
				t.Fatalf("expected key to exist, got %v (%v)", ok, err)
			}

			if err := b.Refresh(ctx, key); err != nil {
				t.Fatalf("refresh: %v", err)
			}
			if err := b.Refresh(ctx, key+":absent"); !errors.Is(err, cache.ErrCacheMiss) {
				t.Fatalf("expected refresh of absent key to miss, got %v", err)
			}

			if err := b.Delete(ctx, key, key+":absent"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := b.Delete(ctx, key); err != nil {
				t.Fatalf("second delete must be a no-op: %v", err)
			}
			if ok, _ := b.Exists(ctx, key); ok {
				t.Fatal("expected key to be gone")
			}

			if err := b.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
		})
	}
}

func TestBackendDoesNotAliasCallerBuffer(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)
			t.Cleanup(func() { _ = b.Close() })

			buf := []byte("abc")
			_ = b.Set(ctx, "alias", buf, 0)
			buf[0] = 'x'

			got, _ := b.Get(ctx, "alias")
			if string(got) != "abc" {
				t.Fatalf("expected stored copy, got %q", got)
			}
		})
	}
}

func TestMemoryBackendPerKeyTTL(t *testing.T) {
	ctx := context.Background()
	b, err := NewMemoryBackend(time.Minute, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_ = b.Set(ctx, "short", []byte("v"), 20*time.Millisecond)
	_ = b.Set(ctx, "long", []byte("v"), 0)

	time.Sleep(60 * time.Millisecond)

	if _, err := b.Get(ctx, "short"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected short entry to expire, got %v", err)
	}
	if _, err := b.Get(ctx, "long"); err != nil {
		t.Fatalf("expected default ttl entry to survive, got %v", err)
	}
}

func TestMemoryBackendReadsDoNotExtendLifetime(t *testing.T) {
	ctx := context.Background()
	b, err := NewMemoryBackend(time.Minute, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_ = b.Set(ctx, "k", []byte("v"), 50*time.Millisecond)
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		_, _ = b.Get(ctx, "k")
	}

	if _, err := b.Get(ctx, "k"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected entry to expire despite reads, got %v", err)
	}
}

func TestMemoryBackendCloseTwice(t *testing.T) {
	b, err := NewMemoryBackend(time.Minute, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSturdycBackendPerKeyTTL(t *testing.T) {
	ctx := context.Background()
	built, err := NewSturdycBackend(SturdycConfig{Capacity: 10, NumShards: 1, TTL: time.Hour, EvictionPercentage: 10})
	if err != nil {
		t.Fatal(err)
	}
	b := built.(*sturdycBackend)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	_ = b.Set(ctx, "search", []byte("v"), 2*time.Minute)
	_ = b.Set(ctx, "entity", []byte("v"), 10*time.Minute)
	_ = b.Set(ctx, "capped", []byte("v"), 2*time.Hour)

	now = now.Add(3 * time.Minute)
	if _, err := b.Get(ctx, "search"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected search entry to expire, got %v", err)
	}
	if _, err := b.Get(ctx, "entity"); err != nil {
		t.Fatalf("expected entity entry to survive, got %v", err)
	}

	// Refresh restarts the entry's own window.
	now = now.Add(6 * time.Minute)
	if err := b.Refresh(ctx, "entity"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(9 * time.Minute)
	if _, err := b.Get(ctx, "entity"); err != nil {
		t.Fatalf("expected refreshed entry to survive, got %v", err)
	}

	now = now.Add(45 * time.Minute)
	if ok, _ := b.Exists(ctx, "capped"); ok {
		t.Fatal("expected ttl above the cache ttl to be capped")
	}
}

func TestSturdycConfigValidate(t *testing.T) {
	valid := SturdycConfig{Capacity: 1000, NumShards: 256, TTL: 5 * time.Minute, EvictionPercentage: 10}

	tests := []struct {
		name     string
		mutate   func(*SturdycConfig)
		errorMsg string
	}{
		{name: "valid", mutate: func(*SturdycConfig) {}},
		{name: "invalid capacity - zero", mutate: func(c *SturdycConfig) { c.Capacity = 0 }, errorMsg: "must be greater than 0"},
		{name: "invalid num shards - zero", mutate: func(c *SturdycConfig) { c.NumShards = 0 }, errorMsg: "must be greater than 0"},
		{name: "invalid TTL - zero", mutate: func(c *SturdycConfig) { c.TTL = 0 }, errorMsg: "must be greater than 0"},
		{name: "invalid eviction percentage - too low", mutate: func(c *SturdycConfig) { c.EvictionPercentage = 0 }, errorMsg: "must be between 1 and 100"},
		{name: "invalid eviction percentage - too high", mutate: func(c *SturdycConfig) { c.EvictionPercentage = 101 }, errorMsg: "must be between 1 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("expected no validation error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error message to contain %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	want := "config error in field Capacity: must be greater than 0"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestSturdycConfigFrom(t *testing.T) {
	cfg := cache.DefaultConfig()
	got := SturdycConfigFrom(cfg)

	if got.Capacity != cfg.Local.Capacity || got.NumShards != cfg.Local.NumShards {
		t.Fatalf("unexpected sizing %+v", got)
	}
	if got.TTL != cfg.DefaultTTL {
		t.Fatalf("expected ttl %s, got %s", cfg.DefaultTTL, got.TTL)
	}
}

func TestRedisBackendReportsUnreachableServer(t *testing.T) {
	b, err := NewRedisBackend(cache.RedisConfig{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = b.Get(ctx, "k")
	if err == nil || errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if err := b.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    any
	}{
		{backend: cache.BackendMemory, want: &memoryBackend{}},
		{backend: cache.BackendLocal, want: &sturdycBackend{}},
		{backend: cache.BackendRedis, want: &redisBackend{}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := cache.DefaultConfig()
			cfg.Backend = tt.backend

			b, err := New(cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer b.Close()

			switch tt.want.(type) {
			case *memoryBackend:
				if _, ok := b.(*memoryBackend); !ok {
					t.Fatalf("expected memory backend, got %T", b)
				}
			case *sturdycBackend:
				if _, ok := b.(*sturdycBackend); !ok {
					t.Fatalf("expected sturdyc backend, got %T", b)
				}
			case *redisBackend:
				if _, ok := b.(*redisBackend); !ok {
					t.Fatalf("expected redis backend, got %T", b)
				}
			}
		})
	}

	cfg := cache.DefaultConfig()
	cfg.Backend = "memcached"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}
