// Package session issues and resolves the signed token that proves which
// user made a request. Nothing is stored server-side: a token stays valid
// while it verifies and its user still exists. Logging out only clears the
// client cookie; copies of the token held elsewhere keep working until the
// cookie max-age lapses on the client.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/repository"
	"github.com/iliyamo/record-tracker/internal/utils"
)

// CookieName is the transport attribute carrying the token.
const CookieName = "session"

// ErrInvalidToken is returned by Decode for absent, malformed, tampered or
// foreign tokens.
var ErrInvalidToken = errors.New("invalid session token")

// UserFinder looks a user up by id. It returns repository.ErrNotFound for
// unknown ids.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Options configures a Manager.
type Options struct {
	Secret []byte
	MaxAge time.Duration // cookie lifetime
	Secure bool          // Secure cookie attribute, on in production
	Now    func() time.Time
}

// Manager issues and validates session tokens.
type Manager struct {
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
	users  UserFinder
	log    logging.Logger
}

// NewManager builds a Manager resolving identities through users.
func NewManager(opts Options, users UserFinder, log logging.Logger) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	return &Manager{
		secret: opts.Secret,
		maxAge: opts.MaxAge,
		secure: opts.Secure,
		now:    opts.Now,
		users:  users,
		log:    log,
	}
}

// Issue returns a new token for userID carrying the issue time and a
// 128-bit random nonce, so two tokens for the same user never collide.
func (m *Manager) Issue(userID string) (string, error) {
	nonce, err := utils.RandomHex(16)
	if err != nil {
		return "", err
	}
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(m.now()),
		ID:       nonce,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Decode verifies token and returns the user id it was issued for.
func (m *Manager) Decode(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.Subject == "" || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ResolveIdentity maps token to an existing user, or nil for anonymous.
// Lookup failures other than "not found" are logged and still treated as
// anonymous.
func (m *Manager) ResolveIdentity(ctx context.Context, token string) *model.User {
	userID, err := m.Decode(token)
	if err != nil {
		return nil
	}
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			m.log.Error(ctx, "session lookup failed", "user_id", userID, "err", err)
		}
		return nil
	}
	return u
}

// Cookie wraps token in the session cookie.
func (m *Manager) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge / time.Second),
		Expires:  m.now().Add(m.maxAge),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that deletes the session on the client.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFrom extracts the session token from r, or "" when absent.
func TokenFrom(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
