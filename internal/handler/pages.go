package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
	"github.com/iliyamo/record-tracker/internal/service"
)

// PageHandler renders the server-side pages. Pages only read; every
// mutation goes through the JSON API from inline scripts.
type PageHandler struct {
	Records *service.Records
	Admin   *service.Admin
	Log     logging.Logger
}

func NewPageHandler(r *service.Records, a *service.Admin, log logging.Logger) *PageHandler {
	return &PageHandler{Records: r, Admin: a, Log: log}
}

// Home lists the caller's records. Admins hold no records and are sent to
// the user list instead.
func (h *PageHandler) Home(c echo.Context) error {
	u := middleware.Identity(c)
	if u.IsAdmin {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	recs, err := h.Records.List(ctx, u)
	if err != nil {
		return h.pageError(c, err)
	}
	return c.Render(http.StatusOK, "home.html", echo.Map{"User": u, "Records": recs})
}

// AdminUsers lists standard users. Non-admins are sent home.
func (h *PageHandler) AdminUsers(c echo.Context) error {
	u := middleware.Identity(c)
	if !u.IsAdmin {
		return c.Redirect(http.StatusSeeOther, middleware.HomePath)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	users, err := h.Admin.ListUsers(ctx, u)
	if err != nil {
		return h.pageError(c, err)
	}
	return c.Render(http.StatusOK, "admin.html", echo.Map{"User": u, "Users": users})
}

func (h *PageHandler) ChangePassword(c echo.Context) error {
	return c.Render(http.StatusOK, "change_password.html", echo.Map{"User": middleware.Identity(c)})
}

func (h *PageHandler) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{})
}

func (h *PageHandler) Register(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", echo.Map{})
}

func (h *PageHandler) pageError(c echo.Context, err error) error {
	h.Log.Error(c.Request().Context(), "render page failed", "path", c.Path(), "err", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
