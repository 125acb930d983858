package utils

import (
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
)

// BindRequest binds the body (JSON or form) into T and validates it. Both
// failures are reported with code and message, the cause goes into meta.
func BindRequest[T any](c echo.Context, code int, message string) (T, error) {
	var v T

	if err := c.Bind(&v); err != nil {
		return v, httperror.NewHTTPError(code, message).AddMetaValue("cause", err.Error())
	}

	if _, err := Validate(v); err != nil {
		return v, httperror.NewHTTPError(code, message).AddMetaValue("cause", err.Error())
	}

	return v, nil
}
