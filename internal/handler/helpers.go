package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"kairos/internal/auth"
	"kairos/internal/errors"
	"kairos/internal/model"
)

// respondError converts a domain error into the JSON error envelope. The
// original error rides along as the internal cause for the request log.
func respondError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return respondError(err)
	}
	return nil
}

// pathID parses the :id parameter.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("id", "must be a positive integer")
	}
	return uint(id), nil
}

func currentUser(c echo.Context) (*model.User, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, errors.ErrUnauthenticated
	}
	return user, nil
}
