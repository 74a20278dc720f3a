package authz

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/repository"
)

type memRecords map[string]*model.Record

func (m memRecords) GetByID(_ context.Context, id string) (*model.Record, error) {
	if r, ok := m[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

type memUsers map[string]*model.User

func (m memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type failingUsers struct{}

func (failingUsers) GetByID(context.Context, string) (*model.User, error) {
	return nil, errors.New("db down")
}

var (
	alice = &model.User{ID: "alice", Username: "alice"}
	bob   = &model.User{ID: "bob", Username: "bob"}
	root  = &model.User{ID: "root", Username: "root", IsAdmin: true}
	ops   = &model.User{ID: "ops", Username: "ops", IsAdmin: true}

	aliceRec = &model.Record{ID: "rec-a", UserID: "alice", Status: model.StatusPending}
)

func newGate() *Gate {
	return NewGate(
		memRecords{aliceRec.ID: aliceRec},
		memUsers{alice.ID: alice, bob.ID: bob, root.ID: root, ops.ID: ops},
	)
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var d *Denial
	require.True(t, errors.As(err, &d), "expected a Denial, got %v", err)
	return d.Reason
}

func TestAuthorize_DecisionTable(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		reason Reason // empty means allow
	}{
		{"anonymous list records", Request{Action: ListRecords}, Unauthenticated},
		{"anonymous admin action", Request{Action: DeleteUser, TargetID: "bob"}, Unauthenticated},
		{"anonymous change password", Request{Action: ChangePassword}, Unauthenticated},

		{"user lists users", Request{Identity: alice, Action: ListUsers}, ForbiddenRole},
		{"user resets password", Request{Identity: alice, Action: ResetPassword, TargetID: "bob"}, ForbiddenRole},
		{"admin lists records", Request{Identity: root, Action: ListRecords}, ForbiddenRole},
		{"admin creates record", Request{Identity: root, Action: CreateRecord}, ForbiddenRole},
		{"admin updates record", Request{Identity: root, Action: UpdateRecord, TargetID: "rec-a"}, ForbiddenRole},

		{"update missing record", Request{Identity: alice, Action: UpdateRecord, TargetID: "nope"}, NotFound},
		{"reset missing user", Request{Identity: root, Action: ResetPassword, TargetID: "nope"}, NotFound},

		{"bob updates alice record", Request{Identity: bob, Action: UpdateRecord, TargetID: "rec-a"}, ForbiddenOwnership},
		{"bob deletes alice record", Request{Identity: bob, Action: DeleteRecord, TargetID: "rec-a"}, ForbiddenOwnership},

		{"admin resets admin", Request{Identity: root, Action: ResetPassword, TargetID: "ops"}, ForbiddenAdminTarget},
		{"admin deletes admin", Request{Identity: root, Action: DeleteUser, TargetID: "ops"}, ForbiddenAdminTarget},
		{"admin deletes self", Request{Identity: root, Action: DeleteUser, TargetID: "root"}, ForbiddenAdminTarget},

		{"owner updates", Request{Identity: alice, Action: UpdateRecord, TargetID: "rec-a"}, ""},
		{"owner deletes", Request{Identity: alice, Action: DeleteRecord, TargetID: "rec-a"}, ""},
		{"user lists own records", Request{Identity: bob, Action: ListRecords}, ""},
		{"user creates record", Request{Identity: bob, Action: CreateRecord}, ""},
		{"user changes password", Request{Identity: bob, Action: ChangePassword}, ""},
		{"admin changes password", Request{Identity: root, Action: ChangePassword}, ""},
		{"admin lists users", Request{Identity: root, Action: ListUsers}, ""},
		{"admin resets user", Request{Identity: root, Action: ResetPassword, TargetID: "bob"}, ""},
	}

	g := newGate()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Authorize(context.Background(), tc.req)
			if tc.reason == "" {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tc.reason, reasonOf(t, err))
		})
	}
}

func TestAuthorize_RoleRowWinsOverLaterRows(t *testing.T) {
	g := newGate()
	// a non-admin asking to delete a missing user, or an admin user, is
	// still a role failure
	for _, target := range []string{"nope", "ops", "bob"} {
		_, err := g.Authorize(context.Background(), Request{Identity: alice, Action: DeleteUser, TargetID: target})
		assert.Equal(t, ForbiddenRole, reasonOf(t, err), target)
	}
	// an admin touching a missing record is a role failure, not not-found
	_, err := g.Authorize(context.Background(), Request{Identity: root, Action: DeleteRecord, TargetID: "nope"})
	assert.Equal(t, ForbiddenRole, reasonOf(t, err))
}

func TestAuthorize_ReturnsLoadedTarget(t *testing.T) {
	g := newGate()

	tgt, err := g.Authorize(context.Background(), Request{Identity: alice, Action: UpdateRecord, TargetID: "rec-a"})
	require.NoError(t, err)
	assert.Same(t, aliceRec, tgt.Record)

	tgt, err = g.Authorize(context.Background(), Request{Identity: root, Action: DeleteUser, TargetID: "bob"})
	require.NoError(t, err)
	assert.Same(t, bob, tgt.User)
}

func TestAuthorize_LookupErrorPropagates(t *testing.T) {
	g := NewGate(memRecords{}, failingUsers{})
	_, err := g.Authorize(context.Background(), Request{Identity: root, Action: DeleteUser, TargetID: "bob"})
	require.Error(t, err)
	var d *Denial
	assert.False(t, errors.As(err, &d))
}

func TestAuthorize_UnknownAction(t *testing.T) {
	_, err := newGate().Authorize(context.Background(), Request{Identity: root, Action: "users.promote"})
	require.Error(t, err)
}

func TestReasonStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthenticated.Status())
	assert.Equal(t, http.StatusForbidden, ForbiddenRole.Status())
	assert.Equal(t, http.StatusForbidden, ForbiddenOwnership.Status())
	assert.Equal(t, http.StatusForbidden, ForbiddenAdminTarget.Status())
	assert.Equal(t, http.StatusNotFound, NotFound.Status())
}

func TestIsDenied(t *testing.T) {
	_, err := newGate().Authorize(context.Background(), Request{Action: ListUsers})
	assert.True(t, IsDenied(err, Unauthenticated))
	assert.False(t, IsDenied(err, ForbiddenRole))
	assert.False(t, IsDenied(errors.New("x"), Unauthenticated))
}
