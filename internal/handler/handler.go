package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "itongue/internal/errors"
)

// httpError maps a domain error to an echo HTTP error with a structured body.
func httpError(err error) *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
