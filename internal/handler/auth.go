package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/service"
	"github.com/iliyamo/record-tracker/internal/session"
)

// requestTimeout bounds the storage work done for one request.
const requestTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts *service.Accounts
	Sessions *session.Manager
	Log      logging.Logger
}

func NewAuthHandler(a *service.Accounts, s *session.Manager, log logging.Logger) *AuthHandler {
	return &AuthHandler{Accounts: a, Sessions: s, Log: log}
}

// ----- DTOs -----

type credentialsReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type userResp struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResp(u *model.User) userResp {
	return userResp{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}
}

// Register creates a standard user and logs them in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Accounts.Register(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if err := h.startSession(c, u); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserResp(u)})
}

// Login verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if err := h.startSession(c, u); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserResp(u)})
}

func (h *AuthHandler) startSession(c echo.Context, u *model.User) error {
	token, err := h.Sessions.Issue(u.ID)
	if err != nil {
		return err
	}
	c.SetCookie(h.Sessions.Cookie(token))
	return nil
}

// Logout clears the session cookie. It succeeds with or without a session.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.Sessions.ClearCookie())
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me returns the identity behind the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.Identity(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please log in"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserResp(u)})
}

// ChangePassword replaces the caller's password after checking the old one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if ok, err := bindGuarded(c, h.Log, h.Accounts.Gate, authz.ChangePassword, "", &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Accounts.ChangePassword(ctx, middleware.Identity(c), req.OldPassword, req.NewPassword); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
