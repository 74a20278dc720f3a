package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/middleware"
	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/repository"
	"github.com/iliyamo/record-tracker/internal/service"
	"github.com/iliyamo/record-tracker/internal/session"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["error"]
}

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"unauthenticated", &authz.Denial{Reason: authz.Unauthenticated, Message: "please log in"}, http.StatusUnauthorized, "please log in"},
		{"forbidden role", &authz.Denial{Reason: authz.ForbiddenRole, Message: "admin privileges required"}, http.StatusForbidden, "admin privileges required"},
		{"not found", &authz.Denial{Reason: authz.NotFound, Message: "record not found"}, http.StatusNotFound, "record not found"},
		{"admin target", &authz.Denial{Reason: authz.ForbiddenAdminTarget, Message: "cannot modify or delete an admin"}, http.StatusForbidden, "cannot modify or delete an admin"},
		{"weak password", service.ErrWeakPassword, http.StatusBadRequest, service.ErrWeakPassword.Error()},
		{"wrapped transition", fmt.Errorf("update: %w", model.ErrInvalidTransition), http.StatusBadRequest, model.ErrInvalidTransition.Error()},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, service.ErrInvalidCredentials.Error()},
		{"wrong old password", service.ErrWrongPassword, http.StatusUnauthorized, service.ErrWrongPassword.Error()},
		{"missing row", repository.ErrNotFound, http.StatusNotFound, "not found"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/", "")
			require.NoError(t, writeError(c, logging.Discard(), tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, errorBody(t, rec))
		})
	}
}

func TestLogout_ClearsCookieWithoutSession(t *testing.T) {
	sm := session.NewManager(session.Options{Secret: []byte("k")}, nil, logging.Discard())
	h := NewAuthHandler(nil, sm, logging.Discard())

	c, rec := newContext(http.MethodPost, "/api/auth/logout", "")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestMe_Anonymous(t *testing.T) {
	h := NewAuthHandler(nil, nil, logging.Discard())
	c, rec := newContext(http.MethodGet, "/api/auth/me", "")
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecordHandler_InvalidBody(t *testing.T) {
	h := NewRecordHandler(service.NewRecords(nil, authz.NewGate(nil, nil)), logging.Discard())

	c, rec := newContext(http.MethodPost, "/api/records", "{not json")
	middleware.SetIdentity(c, &model.User{ID: "u1", Username: "alice"})
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body", errorBody(t, rec))

	// the gate still answers first for anonymous and admin callers
	c, rec = newContext(http.MethodPost, "/api/records", "{not json")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newContext(http.MethodPost, "/api/records", "{not json")
	middleware.SetIdentity(c, &model.User{ID: "a1", Username: "root", IsAdmin: true})
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecordHandler_StorageFailureIs500(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM records WHERE user_id = ?")).
		WithArgs("u1").
		WillReturnError(errors.New("connection reset"))

	records := repository.NewRecordRepo(db)
	gate := authz.NewGate(records, repository.NewUserRepo(db))
	h := NewRecordHandler(service.NewRecords(records, gate), logging.Discard())

	c, rec := newContext(http.MethodGet, "/api/records", "")
	middleware.SetIdentity(c, &model.User{ID: "u1", Username: "alice"})
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorBody(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminHandler_AnonymousIs401(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	users := repository.NewUserRepo(db)
	gate := authz.NewGate(repository.NewRecordRepo(db), users)
	h := NewAdminHandler(service.NewAdmin(users, gate, service.NopPublisher{}, logging.Discard(), 4), logging.Discard())

	c, rec := newContext(http.MethodGet, "/api/admin/users", "")
	require.NoError(t, h.ListUsers(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
