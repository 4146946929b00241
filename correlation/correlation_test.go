package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	slogmulti "github.com/samber/slog-multi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithID_IsImmutable(t *testing.T) {
	ctx := WithID(context.Background(), "first")
	ctx = WithID(ctx, "second")

	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "first", id)
}

func TestID_GeneratesOutsideRequest(t *testing.T) {
	id := ID(context.Background())
	assert.NotEmpty(t, id)

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestEnsure_AdoptsFreshID(t *testing.T) {
	ctx, id := Ensure(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, ID(ctx))

	again, sameID := Ensure(ctx)
	assert.Equal(t, id, sameID)
	assert.Equal(t, ctx, again)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("abc-123"))
	assert.True(t, Valid("a.b_c-1"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("has space"))
	assert.False(t, Valid("line\nbreak"))
	assert.False(t, Valid(strings.Repeat("a", MaxIDLength+1)))
}

func TestMiddleware_AdoptsInboundHeader(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auctions", nil)
	req.Header.Set(HeaderName, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderName))
}

func TestMiddleware_GeneratesWhenMissingOrInvalid(t *testing.T) {
	for _, inbound := range []string{"", "bad id with spaces"} {
		var seen string
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = ID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if inbound != "" {
			req.Header.Set(HeaderName, inbound)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotEmpty(t, seen)
		assert.NotEqual(t, inbound, seen)
		assert.Equal(t, seen, rec.Header().Get(HeaderName))
	}
}

func TestMiddleware_IsolatesConcurrentRequests(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done := make(chan string)
		go func(ctx context.Context) { done <- ID(ctx) }(r.Context())
		_, _ = w.Write([]byte(<-done))
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := "req-" + strings.Repeat("x", i+1)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderName, want)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Body.String())
		}(i)
	}
	wg.Wait()
}

func TestLogMiddleware_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slogmulti.Pipe(LogMiddleware()).Handler(slog.NewTextHandler(&buf, nil)))

	logger.InfoContext(WithID(context.Background(), "abc-123"), "cache hit", "key", "auction:auction:all")
	logger.InfoContext(context.Background(), "startup")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "correlation_id=abc-123")
	assert.NotContains(t, lines[1], "correlation_id")
}
