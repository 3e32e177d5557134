package validation

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError flattens binding failures into per-field details.
// Errors that are not validation failures (e.g. malformed JSON) yield nil.
func FormatValidationError(err error) []Error {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return nil
	}

	details := make([]Error, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, Error{
			Field:   e.Field(),
			Message: e.Error(),
		})
	}
	return details
}

type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
