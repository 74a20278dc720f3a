package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
	"github.com/iliyamo/record-tracker/internal/service"
)

// AdminHandler serves user management for admins.
type AdminHandler struct {
	Admin *service.Admin
	Log   logging.Logger
}

func NewAdminHandler(a *service.Admin, log logging.Logger) *AdminHandler {
	return &AdminHandler{Admin: a, Log: log}
}

type resetPasswordReq struct {
	NewPassword string `json:"newPassword"`
}

type userSummaryResp struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	CreatedAt   time.Time `json:"createdAt"`
	RecordCount int       `json:"recordCount"`
}

// ListUsers returns every non-admin user with their record count.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	users, err := h.Admin.ListUsers(ctx, middleware.Identity(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	out := make([]userSummaryResp, 0, len(users))
	for _, u := range users {
		out = append(out, userSummaryResp{
			ID:          u.ID,
			Username:    u.Username,
			CreatedAt:   u.CreatedAt,
			RecordCount: u.RecordCount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// ResetPassword sets a new password for a standard user.
func (h *AdminHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if ok, err := bindGuarded(c, h.Log, h.Admin.Gate, authz.ResetPassword, c.Param("id"), &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Admin.ResetPassword(ctx, middleware.Identity(c), c.Param("id"), req.NewPassword); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteUser removes a standard user together with their records.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Admin.DeleteUser(ctx, middleware.Identity(c), c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
