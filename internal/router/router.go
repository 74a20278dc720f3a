// Package router registers the HTTP routes. Identity resolution happens
// once for every request in middleware.Session, installed on the Echo
// instance before any of these groups; authorization itself is decided by
// the services, so API routes carry no role middleware.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/handler"
)

// RegisterRoutes registers routes that need neither a session nor the
// API prefix. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers account endpoints under /api/auth. Register and
// login are public; the rest resolve the caller from the session.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler) {
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me)
	g.POST("/change-password", a.ChangePassword)
}

// RegisterRecords registers the caller's record endpoints. PUT and PATCH
// both take a partial body.
func RegisterRecords(api *echo.Group, r *handler.RecordHandler) {
	g := api.Group("/records")
	g.GET("", r.List)
	g.POST("", r.Create)
	g.PUT("/:id", r.Update)
	g.PATCH("/:id", r.Update)
	g.DELETE("/:id", r.Delete)
}

// RegisterAdmin registers user management endpoints.
func RegisterAdmin(api *echo.Group, a *handler.AdminHandler) {
	g := api.Group("/admin/users")
	g.GET("", a.ListUsers)
	g.PUT("/:id", a.ResetPassword)
	g.DELETE("/:id", a.DeleteUser)
}
