package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
)

// bindGuarded decodes the body of a guarded operation into dst. When the
// body does not decode, the gate still decides first, so a denial wins
// over "invalid body". ok is false once a response has been written.
func bindGuarded(c echo.Context, log logging.Logger, gate *authz.Gate, action authz.Action, targetID string, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err == nil {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	req := authz.Request{Identity: middleware.Identity(c), Action: action, TargetID: targetID}
	if _, err := gate.Authorize(ctx, req); err != nil {
		return false, writeError(c, log, err)
	}
	return false, invalidBody(c)
}
