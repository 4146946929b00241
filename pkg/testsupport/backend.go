package testsupport

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-service-core/cache"
	"github.com/goliatone/go-service-core/internal/cacheinfra"
)

// ErrBackendDown is returned by a failing FlakyBackend.
var ErrBackendDown = errors.New("testsupport: cache backend down")

// FlakyBackend wraps a cache.Backend, counts calls per operation and can be
// switched into a mode where every call fails.
type FlakyBackend struct {
	inner   cache.Backend
	failing atomic.Bool

	mu    sync.Mutex
	calls map[string]int
}

// NewFlakyBackend wraps inner.
func NewFlakyBackend(inner cache.Backend) *FlakyBackend {
	return &FlakyBackend{inner: inner, calls: make(map[string]int)}
}

// NewMemoryBackend returns a ttlcache backed store closed at test cleanup.
func NewMemoryBackend(t testing.TB) cacheinfra.Backend {
	t.Helper()

	b, err := cacheinfra.NewMemoryBackend(time.Minute, 0)
	if err != nil {
		t.Fatalf("failed to create memory backend: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// NewFlakyClient returns a cache client over a FlakyBackend over a memory
// backend, plus the FlakyBackend for control.
func NewFlakyClient(t testing.TB, opts ...cache.ClientOption) (*cache.Client, *FlakyBackend) {
	t.Helper()

	flaky := NewFlakyBackend(NewMemoryBackend(t))
	return cache.NewClient(flaky, opts...), flaky
}

// Fail toggles the failing mode.
func (b *FlakyBackend) Fail(failing bool) {
	b.failing.Store(failing)
}

// Calls returns how many times op was called.
func (b *FlakyBackend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// Reset clears the call counters.
func (b *FlakyBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = make(map[string]int)
}

func (b *FlakyBackend) record(op string) error {
	b.mu.Lock()
	b.calls[op]++
	b.mu.Unlock()

	if b.failing.Load() {
		return ErrBackendDown
	}
	return nil
}

func (b *FlakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := b.record("get"); err != nil {
		return nil, err
	}
	return b.inner.Get(ctx, key)
}

func (b *FlakyBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := b.record("set"); err != nil {
		return err
	}
	return b.inner.Set(ctx, key, value, ttl)
}

func (b *FlakyBackend) Delete(ctx context.Context, keys ...string) error {
	if err := b.record("delete"); err != nil {
		return err
	}
	return b.inner.Delete(ctx, keys...)
}

func (b *FlakyBackend) Exists(ctx context.Context, key string) (bool, error) {
	if err := b.record("exists"); err != nil {
		return false, err
	}
	return b.inner.Exists(ctx, key)
}

func (b *FlakyBackend) Refresh(ctx context.Context, key string) error {
	if err := b.record("refresh"); err != nil {
		return err
	}
	return b.inner.Refresh(ctx, key)
}

// Ping fails while the backend is failing.
func (b *FlakyBackend) Ping(ctx context.Context) error {
	if err := b.record("ping"); err != nil {
		return err
	}
	if p, ok := b.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the wrapped backend when it can be closed.
func (b *FlakyBackend) Close() error {
	if c, ok := b.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
