package handler

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
)

// httpError converts a service error into an echo error carrying an
// ErrorResponse body. Internal failures are logged and returned without detail.
func httpError(c echo.Context, logger *slog.Logger, err error) *echo.HTTPError {
	mapped := apperrors.MapErrorToHTTP(err)
	if apperrors.KindOf(err) == apperrors.KindInternal {
		logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: malformed body", apperrors.ErrInvalidRequest)
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidRequest, err.Error())
	}
	return nil
}
