// Package httpapi exposes the auction and search services over HTTP.
//
// Every route runs behind the same chain: correlation id, request log line,
// panic recovery. Handlers return errors and the translator renders them as
// problem responses.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/correlation"
	"github.com/goliatone/go-service-core/httperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resource mounts a group of routes under /api.
type Resource interface {
	Mount(r chi.Router, t *httperr.Translator)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Logger *slog.Logger

	// Health is checked by GET /health. Nil means always healthy.
	Health Pinger

	// Gatherer backs GET /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the HTTP handler for resources.
func NewRouter(opts Options, resources ...Resource) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := httperr.NewTranslator(logger)

	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Use(RequestLogger(logger))
	r.Use(t.Recoverer)

	r.Method(http.MethodGet, "/health", health(opts.Health, logger))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.MethodNotAllowed(t.MethodNotAllowed)
	r.Route("/api", func(api chi.Router) {
		for _, res := range resources {
			res.Mount(api, t)
		}
	})

	r.NotFound(t.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apperr.NotFound("No route matches %s %s", r.Method, r.URL.Path)
	}).ServeHTTP)

	return r
}

// health reports only ok or degraded. The ping error goes to the log, it
// may name internal hosts.
func health(p Pinger, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				status = http.StatusServiceUnavailable
				body = map[string]string{"status": "degraded"}
			}
		}
		_ = writeJSON(w, status, body)
	})
}
