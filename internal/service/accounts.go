package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/model"
	q "github.com/iliyamo/record-tracker/internal/queue"
	"github.com/iliyamo/record-tracker/internal/repository"
	"github.com/iliyamo/record-tracker/internal/utils"
)

// UserStore is the persistence the account and admin services need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	ListNonAdmin(ctx context.Context) ([]model.UserSummary, error)
}

// Accounts handles registration, login and password changes.
type Accounts struct {
	Users  UserStore
	Gate   *authz.Gate
	Events Publisher
	Log    logging.Logger
	Cost   int // bcrypt cost
}

func NewAccounts(users UserStore, gate *authz.Gate, events Publisher, log logging.Logger, cost int) *Accounts {
	return &Accounts{Users: users, Gate: gate, Events: events, Log: log, Cost: cost}
}

// Register creates a standard (non-admin) user.
func (a *Accounts) Register(ctx context.Context, username, password string) (*model.User, error) {
	u, err := a.create(ctx, username, password, false)
	if err != nil {
		return nil, err
	}
	emit(ctx, a.Events, a.Log, q.UserRegistered, u, "")
	return u, nil
}

// CreateAdmin provisions an admin account. It is only reachable from the
// provisioning command, never from HTTP.
func (a *Accounts) CreateAdmin(ctx context.Context, username, password string) (*model.User, error) {
	return a.create(ctx, username, password, true)
}

func (a *Accounts) create(ctx context.Context, username, password string, admin bool) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if n := len([]rune(username)); n < model.MinUsernameLen {
		return nil, ErrWeakUsername
	} else if n > model.MaxUsernameLen {
		return nil, ErrLongUsername
	}
	if len([]rune(password)) < model.MinPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := utils.HashPassword(password, a.Cost)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: username, PasswordHash: hash, IsAdmin: admin}
	if err := a.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Login checks credentials. Unknown users and wrong passwords fail the
// same way, and failures leave no state behind.
func (a *Accounts) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := a.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword replaces the caller's own password after verifying the
// old one. Admins may change their own password too.
func (a *Accounts) ChangePassword(ctx context.Context, identity *model.User, oldPassword, newPassword string) error {
	if _, err := a.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.ChangePassword}); err != nil {
		return err
	}
	if oldPassword == "" || newPassword == "" {
		return ErrMissingPasswords
	}
	if len([]rune(newPassword)) < model.MinPasswordLen {
		return ErrWeakPassword
	}
	// re-read so a hash changed since the session was resolved is honoured
	current, err := a.Users.GetByID(ctx, identity.ID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(current.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}
	hash, err := utils.HashPassword(newPassword, a.Cost)
	if err != nil {
		return err
	}
	if err := a.Users.UpdatePassword(ctx, current.ID, hash); err != nil {
		return err
	}
	emit(ctx, a.Events, a.Log, q.UserPasswordChanged, current, "")
	return nil
}
