package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/handler"
	"github.com/iliyamo/record-tracker/internal/middleware"
)

// RegisterPages registers the server-rendered pages. Login and register
// are only for anonymous visitors; everything else requires a session.
// Guards are attached per route: a guarded group on the root prefix would
// also catch unknown paths.
func RegisterPages(e *echo.Echo, p *handler.PageHandler) {
	publicOnly := middleware.PublicOnly()
	e.GET(middleware.LoginPath, p.Login, publicOnly)
	e.GET("/register", p.Register, publicOnly)

	requireLogin := middleware.RequireLogin()
	e.GET(middleware.HomePath, p.Home, requireLogin)
	e.GET("/admin", p.AdminUsers, requireLogin)
	e.GET("/change-password", p.ChangePassword, requireLogin)
}
