package service

import (
	"context"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/model"
	q "github.com/iliyamo/record-tracker/internal/queue"
	"github.com/iliyamo/record-tracker/internal/utils"
)

// Admin implements user management. Admin accounts can never be targeted.
type Admin struct {
	Users  UserStore
	Gate   *authz.Gate
	Events Publisher
	Log    logging.Logger
	Cost   int
}

func NewAdmin(users UserStore, gate *authz.Gate, events Publisher, log logging.Logger, cost int) *Admin {
	return &Admin{Users: users, Gate: gate, Events: events, Log: log, Cost: cost}
}

// ListUsers returns every non-admin user with their record count.
func (s *Admin) ListUsers(ctx context.Context, identity *model.User) ([]model.UserSummary, error) {
	if _, err := s.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.ListUsers}); err != nil {
		return nil, err
	}
	return s.Users.ListNonAdmin(ctx)
}

// ResetPassword sets a new password for a standard user.
func (s *Admin) ResetPassword(ctx context.Context, identity *model.User, targetID, newPassword string) error {
	tgt, err := s.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.ResetPassword, TargetID: targetID})
	if err != nil {
		return err
	}
	if len([]rune(newPassword)) < model.MinPasswordLen {
		return ErrWeakPassword
	}
	hash, err := utils.HashPassword(newPassword, s.Cost)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, tgt.User.ID, hash); err != nil {
		return err
	}
	emit(ctx, s.Events, s.Log, q.UserPasswordReset, tgt.User, identity.ID)
	return nil
}

// DeleteUser removes a standard user and all of their records.
func (s *Admin) DeleteUser(ctx context.Context, identity *model.User, targetID string) error {
	tgt, err := s.Gate.Authorize(ctx, authz.Request{Identity: identity, Action: authz.DeleteUser, TargetID: targetID})
	if err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, tgt.User.ID); err != nil {
		return err
	}
	emit(ctx, s.Events, s.Log, q.UserDeleted, tgt.User, identity.ID)
	return nil
}
