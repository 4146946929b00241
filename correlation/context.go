// Package correlation carries the per-request correlation identifier.
//
// The identifier travels in the request context. It is established once at
// the request boundary (see Middleware) and read by logging and error
// rendering anywhere below it, including goroutines that receive the same
// context. Concurrent requests never share a value because each request has
// its own context.
package correlation

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

// HeaderName is the HTTP header carrying the correlation identifier.
const HeaderName = "X-Correlation-ID"

// MaxIDLength bounds inbound identifiers to keep logs and headers sane.
const MaxIDLength = 128

var validID = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type contextKey struct{}

// NewID generates a fresh correlation identifier.
func NewID() string {
	return uuid.NewString()
}

// Valid reports whether id can be adopted from an untrusted source.
func Valid(id string) bool {
	if id == "" || len(id) > MaxIDLength {
		return false
	}
	return validID.MatchString(id)
}

// WithID stores id in ctx. The identifier is immutable for the lifetime of
// a request: if ctx already carries one, ctx is returned unchanged.
func WithID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := FromContext(ctx); ok {
		return ctx
	}
	if id == "" {
		id = NewID()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identifier established for ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// ID returns the active identifier. Outside of a request it returns a fresh
// identifier instead of failing; callers that need the same value on later
// reads should use Ensure.
func ID(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok {
		return id
	}
	return NewID()
}

// Ensure returns a context that carries an identifier, generating one when
// ctx has none. Background jobs call this once at their entry point.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := NewID()
	return WithID(ctx, id), id
}
