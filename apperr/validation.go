package apperr

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FromValidation converts ozzo-validation failures into a KindValidation
// error with one entry per failing field. Nested errors are flattened into
// dotted paths ("item.year"). Internal validator failures become KindUnknown.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return Unknown(internal.InternalError(), "validation could not be evaluated")
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string)
		flattenValidation("", verrs, fields)
		if len(fields) == 0 {
			return nil
		}
		return Validation(fields)
	}

	return &Error{Kind: KindValidation, Message: err.Error()}
}

func flattenValidation(prefix string, verrs validation.Errors, out map[string][]string) {
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(ferr, &nested) {
			flattenValidation(path, nested, out)
			continue
		}
		out[path] = append(out[path], ferr.Error())
	}
}
