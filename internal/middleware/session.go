package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/session"
)

// Session resolves the session cookie into an identity for every request.
// It never rejects: anonymous requests continue with no identity set and
// the authorization gate decides what they may do.
func Session(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			if u := m.ResolveIdentity(r.Context(), session.TokenFrom(r)); u != nil {
				SetIdentity(c, u)
			}
			return next(c)
		}
	}
}
