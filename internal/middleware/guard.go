package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Page paths used by the route guard.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// RequireLogin redirects anonymous page requests to the login page. It
// must run after Session.
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Identity(c) == nil {
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}
			return next(c)
		}
	}
}

// PublicOnly sends authenticated identities away from the login and
// register pages to the application home.
func PublicOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Identity(c) != nil {
				return c.Redirect(http.StatusSeeOther, HomePath)
			}
			return next(c)
		}
	}
}
