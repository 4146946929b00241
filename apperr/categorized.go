package apperr

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// fromCategorized reads a go-errors error, as returned by go-repository-bun,
// into an *Error. The category decides the kind; the code is used when the
// category is not one we know. Anything else is KindUnknown.
func fromCategorized(err error) (*Error, bool) {
	base := categorizedOf(err)
	if base == nil {
		return nil, false
	}

	e := &Error{
		Kind:    kindOfCategory(base.Category, base.Code),
		Message: base.Message,
		Cause:   err,
	}
	if e.Kind == KindValidation && len(base.ValidationErrors) > 0 {
		e.Fields = make(map[string][]string, len(base.ValidationErrors))
		for _, fe := range base.ValidationErrors {
			e.Fields[fe.Field] = append(e.Fields[fe.Field], fe.Message)
		}
	}
	return e, true
}

func categorizedOf(err error) *goerrors.Error {
	var retryable *goerrors.RetryableError
	if errors.As(err, &retryable) && retryable.BaseError != nil {
		return retryable.BaseError
	}
	var base *goerrors.Error
	if errors.As(err, &base) {
		return base
	}
	return nil
}

func kindOfCategory(category goerrors.Category, code int) Kind {
	switch category {
	case goerrors.CategoryNotFound, repository.CategoryDatabaseNotFound:
		return KindNotFound
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return KindValidation
	case goerrors.CategoryConflict, repository.CategoryDatabaseDuplicate:
		return KindConflict
	case goerrors.CategoryAuth:
		return KindUnauthorized
	case goerrors.CategoryAuthz:
		return KindForbidden
	}

	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	}
	return KindUnknown
}
