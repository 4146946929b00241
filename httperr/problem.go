// Package httperr renders errors as problem documents.
//
// Every handler error and every panic goes through a Translator, which maps
// the apperr kind to a status and stamps the request's correlation id on the
// response. Errors that are not application errors are reported generically;
// their message is only logged.
package httperr

import (
	"fmt"

	"github.com/goliatone/go-service-core/apperr"
)

// ContentType is the media type of every error response.
const ContentType = "application/problem+json"

// GenericTitle replaces the message of unexpected errors on the wire.
const GenericTitle = "An unexpected error occurred."

// Problem is the error envelope written to clients.
type Problem struct {
	Type          string              `json:"type"`
	Title         string              `json:"title"`
	Status        int                 `json:"status"`
	Detail        string              `json:"detail,omitempty"`
	Instance      string              `json:"instance"`
	CorrelationID string              `json:"correlationId"`
	Errors        map[string][]string `json:"errors,omitempty"`
}

// TypeFor returns the problem type URI of status.
func TypeFor(status int) string {
	return fmt.Sprintf("https://httpstatuses.com/%d", status)
}

// NewProblem maps err to a problem for the request path instance.
// Only validation errors carry field details.
func NewProblem(err error, instance, correlationID string) Problem {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindUnknown {
		status := apperr.KindUnknown.Status()
		return Problem{
			Type:          TypeFor(status),
			Title:         GenericTitle,
			Status:        status,
			Instance:      instance,
			CorrelationID: correlationID,
		}
	}

	status := appErr.Status()
	p := Problem{
		Type:          TypeFor(status),
		Title:         appErr.Message,
		Status:        status,
		Detail:        appErr.Detail,
		Instance:      instance,
		CorrelationID: correlationID,
	}
	if p.Title == "" {
		p.Title = appErr.Kind.String()
	}
	if appErr.Kind == apperr.KindValidation && len(appErr.Fields) > 0 {
		p.Errors = appErr.Fields
	}
	return p
}

// errPanic wraps a recovered panic value.
type errPanic struct {
	value any
}

func (e errPanic) Error() string {
	if err, ok := e.value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", e.value)
}

func (e errPanic) Unwrap() error {
	err, _ := e.value.(error)
	return err
}
