package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medscan/internal/errors"
)

// MessageResponse is the body of simple acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError converts a service error into an echo error with an
// ErrorResponse body. The original error stays attached for the request log.
func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: message})
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error())
	}
	return nil
}
