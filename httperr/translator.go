package httperr

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/correlation"
)

// HandlerFunc is an http handler that reports failure by returning an error
// instead of writing it. A handler that returns an error must not have
// written a response.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Translator turns errors into problem responses.
type Translator struct {
	logger *slog.Logger
}

// NewTranslator returns a translator logging through logger, or slog.Default
// when logger is nil.
func NewTranslator(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{logger: logger}
}

// Handle adapts fn to http.Handler, translating its error.
func (t *Translator) Handle(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			t.Write(w, r, err)
		}
	})
}

// Recoverer converts panics below it into unexpected error responses.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func (t *Translator) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			t.logger.ErrorContext(r.Context(), "panic recovered",
				"panic", rec,
				"stack", string(debug.Stack()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			t.write(w, r, errPanic{value: rec}, false)
		}()
		next.ServeHTTP(w, r)
	})
}

// Write renders err as a problem response for r.
func (t *Translator) Write(w http.ResponseWriter, r *http.Request, err error) {
	t.write(w, r, err, true)
}

func (t *Translator) write(w http.ResponseWriter, r *http.Request, err error, logUnknown bool) {
	ctx := r.Context()
	id := correlation.ID(ctx)
	p := NewProblem(err, r.URL.Path, id)

	kind := apperr.KindOf(err)
	switch {
	case kind == apperr.KindUnknown && logUnknown:
		t.logger.ErrorContext(ctx, "unexpected error",
			"error", err.Error(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", p.Status,
		)
	case kind != apperr.KindUnknown:
		t.logger.InfoContext(ctx, "request failed",
			"kind", kind.String(),
			"error", err.Error(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", p.Status,
		)
	}

	t.send(w, r, p)
}

// MethodNotAllowed answers a known path requested with a method it does not
// serve. 405 is not an application error kind, so the problem is built
// directly.
func (t *Translator) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	status := http.StatusMethodNotAllowed
	p := Problem{
		Type:          TypeFor(status),
		Title:         fmt.Sprintf("Method %s is not allowed on %s", r.Method, r.URL.Path),
		Status:        status,
		Instance:      r.URL.Path,
		CorrelationID: correlation.ID(r.Context()),
	}
	t.logger.InfoContext(r.Context(), "request failed",
		"kind", "method_not_allowed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	)
	t.send(w, r, p)
}

func (t *Translator) send(w http.ResponseWriter, r *http.Request, p Problem) {
	h := w.Header()
	h.Set("Content-Type", ContentType)
	if h.Get(correlation.HeaderName) == "" {
		h.Set(correlation.HeaderName, p.CorrelationID)
	}
	w.WriteHeader(p.Status)
	if encErr := json.NewEncoder(w).Encode(p); encErr != nil {
		t.logger.WarnContext(r.Context(), "failed to write problem response", "error", encErr)
	}
}
