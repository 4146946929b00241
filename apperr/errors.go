// Package apperr defines the closed set of application error kinds and
// their wire status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Kind classifies an application error. The set is closed: every error that
// reaches the boundary is one of these kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

// Status returns the wire status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is an application error carrying exactly one Kind.
type Error struct {
	Kind    Kind
	Message string
	// Detail is an optional longer explanation shown to callers.
	Detail string
	// Fields holds field level messages; only meaningful for KindValidation.
	Fields map[string][]string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind so errors.Is(err, &Error{Kind: KindNotFound})
// works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Status returns the wire status for the error kind.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// WithDetail returns a copy of e with Detail set.
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error from field level messages.
func Validation(fields map[string][]string) *Error {
	cp := make(map[string][]string, len(fields))
	for k, v := range fields {
		cp[k] = append([]string(nil), v...)
	}
	return &Error{
		Kind:    KindValidation,
		Message: "One or more validation failures occurred.",
		Fields:  cp,
	}
}

// FieldError is shorthand for a single failing field.
func FieldError(field, message string) *Error {
	return Validation(map[string][]string{field: {message}})
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// Unknown wraps an unexpected failure. The message is for operators only.
func Unknown(cause error, format string, args ...any) *Error {
	e := New(KindUnknown, format, args...)
	e.Cause = cause
	return e
}

// Wrap attaches kind and message to cause. If cause already is an *Error
// its kind is preserved, and so is the kind of a categorized go-errors error
// unless that kind is unknown.
func Wrap(cause error, kind Kind, msg string) *Error {
	var existing *Error
	if errors.As(cause, &existing) {
		kind = existing.Kind
	} else if e, ok := fromCategorized(cause); ok && e.Kind != KindUnknown {
		kind = e.Kind
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// As extracts the application error from err's chain. Errors from
// go-errors, which go-repository-bun returns, are converted by category.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return fromCategorized(err)
}

// KindOf classifies err. Anything that As cannot read is KindUnknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a not-found application error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// SortedFields returns the field names of a validation error in stable order.
func (e *Error) SortedFields() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
