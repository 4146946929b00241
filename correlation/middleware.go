package correlation

import (
	"context"
	"log/slog"
	"net/http"

	slogmulti "github.com/samber/slog-multi"
)

// LogKey is the attribute name used for the identifier in log records.
const LogKey = "correlation_id"

// Middleware establishes the correlation identifier for each request.
// A valid inbound X-Correlation-ID is adopted so traces line up across
// services; anything else is replaced with a generated identifier. The
// identifier is echoed on the response unless a handler already set it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderName)
		if !Valid(id) {
			id = NewID()
		}

		ctx := WithID(r.Context(), id)
		id, _ = FromContext(ctx)

		if w.Header().Get(HeaderName) == "" {
			w.Header().Set(HeaderName, id)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LogMiddleware returns a slog-multi middleware that stamps every record
// logged with a request context with its correlation identifier.
func LogMiddleware() slogmulti.Middleware {
	return slogmulti.NewHandleInlineMiddleware(
		func(ctx context.Context, record slog.Record, next func(context.Context, slog.Record) error) error {
			if id, ok := FromContext(ctx); ok {
				record = record.Clone()
				record.AddAttrs(slog.String(LogKey, id))
			}
			return next(ctx, record)
		},
	)
}
