package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/record-tracker/internal/config"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/repository"
	"github.com/iliyamo/record-tracker/internal/session"
)

type memUsers map[string]*model.User

func (m memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func serve(t *testing.T, h echo.HandlerFunc, cookie *http.Cookie, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	require.NoError(t, h(c))
	return rec
}

func whoami(c echo.Context) error {
	if u := Identity(c); u != nil {
		return c.String(http.StatusOK, u.Username)
	}
	return c.String(http.StatusOK, "anonymous")
}

func TestSession_ResolvesIdentity(t *testing.T) {
	users := memUsers{"u1": {ID: "u1", Username: "alice"}}
	sm := session.NewManager(session.Options{Secret: []byte("s")}, users, logging.Discard())
	tok, err := sm.Issue("u1")
	require.NoError(t, err)

	rec := serve(t, whoami, sm.Cookie(tok), Session(sm))
	assert.Equal(t, "alice", rec.Body.String())

	rec = serve(t, whoami, nil, Session(sm))
	assert.Equal(t, "anonymous", rec.Body.String())

	gone, err := sm.Issue("deleted")
	require.NoError(t, err)
	rec = serve(t, whoami, sm.Cookie(gone), Session(sm))
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequireLogin(t *testing.T) {
	rec := serve(t, whoami, nil, RequireLogin())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))

	login := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetIdentity(c, &model.User{ID: "u1", Username: "alice"})
			return next(c)
		}
	}
	rec = serve(t, whoami, nil, login, RequireLogin())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestPublicOnly(t *testing.T) {
	rec := serve(t, whoami, nil, PublicOnly())
	assert.Equal(t, http.StatusOK, rec.Code)

	login := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetIdentity(c, &model.User{ID: "u1"})
			return next(c)
		}
	}
	rec = serve(t, whoami, nil, login, PublicOnly())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, HomePath, rec.Header().Get(echo.HeaderLocation))
}

func TestRateLimit_PassThroughWhenDisabled(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, Capacity: 1}
	mw := RateLimit(cfg, nil, logging.Discard())
	for i := 0; i < 5; i++ {
		rec := serve(t, whoami, nil, mw)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}

	cfg.Enabled = true
	mw = RateLimit(cfg, nil, logging.Discard())
	rec := serve(t, whoami, nil, mw)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateKey_Strategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/records", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/records")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /api/records", rateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:anon", rateKey(cfg, c))

	SetIdentity(c, &model.User{ID: "u7"})
	cfg.KeyStrategy = "ip_user"
	assert.Equal(t, "rl:ip:10.0.0.1:user:u7", rateKey(cfg, c))
}
