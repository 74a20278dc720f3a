package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/repository"
	"github.com/iliyamo/record-tracker/internal/service"
)

// badRequest lists the validation failures surfaced verbatim as 400s.
var badRequest = []error{
	service.ErrMissingCredentials,
	service.ErrWeakUsername,
	service.ErrLongUsername,
	service.ErrWeakPassword,
	service.ErrUsernameTaken,
	service.ErrMissingPasswords,
	model.ErrMissingFields,
	model.ErrDateTooLong,
	model.ErrContentTooLong,
	model.ErrInvalidStatus,
	model.ErrInvalidTransition,
}

// writeError maps a service error onto the JSON error payload. Anything
// unrecognised is logged and answered with a generic 500.
func writeError(c echo.Context, log logging.Logger, err error) error {
	var d *authz.Denial
	if errors.As(err, &d) {
		return c.JSON(d.Reason.Status(), echo.Map{"error": d.Message})
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": target.Error()})
		}
	}
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrWrongPassword):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	log.Error(c.Request().Context(), "request failed",
		"method", c.Request().Method, "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}
