package dataline

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// FieldError is a rejected data line. Field is empty when the line as a whole
// is malformed.
type FieldError struct {
	Field   string
	Message string
}

func newFieldError(field, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg}
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusUnprocessableEntity, e.Message).AddMetaValue("field", e.Field)
}

// AsFieldError finds a FieldError in err's chain.
func AsFieldError(err error) (*FieldError, bool) {
	var fieldErr *FieldError
	ok := errors.As(err, &fieldErr)
	return fieldErr, ok
}
