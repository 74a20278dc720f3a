package middleware

// identity.go defines how the resolved identity travels through the Echo
// context. The Session middleware stores it; handlers and other middleware
// read it back with Identity.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/record-tracker/internal/model"
)

const identityKey = "identity"

// Identity returns the user resolved for this request, or nil when the
// request is anonymous.
func Identity(c echo.Context) *model.User {
	u, _ := c.Get(identityKey).(*model.User)
	return u
}

// SetIdentity attaches u to the request context.
func SetIdentity(c echo.Context, u *model.User) {
	c.Set(identityKey, u)
}

// userID returns the identity's id for rate-limit keys, "anon" otherwise.
func userID(c echo.Context) string {
	if u := Identity(c); u != nil {
		return u.ID
	}
	return "anon"
}
