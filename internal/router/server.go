package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/record-tracker/internal/handler"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
	"github.com/iliyamo/record-tracker/internal/service"
	"github.com/iliyamo/record-tracker/internal/session"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	DB        *sql.DB
	Sessions  *session.Manager
	Accounts  *service.Accounts
	Records   *service.Records
	Admin     *service.Admin
	Renderer  echo.Renderer
	Log       logging.Logger
	RateLimit echo.MiddlewareFunc // optional, applied to /api
}

// New builds the Echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			ctx := c.Request().Context()
			if v.Error != nil {
				d.Log.Error(ctx, "request", append(args, "err", v.Error)...)
				return nil
			}
			d.Log.Info(ctx, "request", args...)
			return nil
		},
	}))
	e.Use(middleware.Session(d.Sessions))

	RegisterRoutes(e, d.DB)

	api := e.Group("/api")
	if d.RateLimit != nil {
		api.Use(d.RateLimit)
	}
	RegisterAuth(api, handler.NewAuthHandler(d.Accounts, d.Sessions, d.Log))
	RegisterRecords(api, handler.NewRecordHandler(d.Records, d.Log))
	RegisterAdmin(api, handler.NewAdminHandler(d.Admin, d.Log))

	RegisterPages(e, handler.NewPageHandler(d.Records, d.Admin, d.Log))
	return e
}
