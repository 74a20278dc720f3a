// Package authz decides whether an identity may perform an action. Every
// operation goes through the same ordered decision table:
//
//  1. no identity                                   -> unauthenticated
//  2. admin-only action, identity not admin         -> forbidden-role
//  3. non-admin action (records), identity is admin -> forbidden-role
//  4. targeted record/user does not exist           -> not-found
//  5. record mutation by someone other than owner   -> forbidden-ownership
//  6. admin management aimed at an admin            -> forbidden-admin-target
//  7. allow
//
// The first matching row wins. Actions differ only in which rows apply.
package authz

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iliyamo/record-tracker/internal/model"
	"github.com/iliyamo/record-tracker/internal/repository"
)

// Reason names why a request was denied.
type Reason string

const (
	Unauthenticated      Reason = "unauthenticated"
	ForbiddenRole        Reason = "forbidden-role"
	NotFound             Reason = "not-found"
	ForbiddenOwnership   Reason = "forbidden-ownership"
	ForbiddenAdminTarget Reason = "forbidden-admin-target"
)

// Status maps a reason onto its HTTP status code.
func (r Reason) Status() int {
	switch r {
	case Unauthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

// Denial is the error returned for a denied request.
type Denial struct {
	Reason  Reason
	Action  Action
	Message string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s denied: %s", d.Action, d.Reason)
}

// IsDenied reports whether err is a Denial with the given reason.
func IsDenied(err error, reason Reason) bool {
	var d *Denial
	return errors.As(err, &d) && d.Reason == reason
}

// Action is an operation guarded by the gate.
type Action string

const (
	ListRecords    Action = "records.list"
	CreateRecord   Action = "records.create"
	UpdateRecord   Action = "records.update"
	DeleteRecord   Action = "records.delete"
	ChangePassword Action = "account.change-password"
	ListUsers      Action = "users.list"
	ResetPassword  Action = "users.reset-password"
	DeleteUser     Action = "users.delete"
)

type roleRule int

const (
	anyRole roleRule = iota
	adminOnly
	standardOnly
)

type targetKind int

const (
	noTarget targetKind = iota
	recordTarget
	userTarget
)

type rule struct {
	role   roleRule
	target targetKind
}

var rules = map[Action]rule{
	ListRecords:    {role: standardOnly},
	CreateRecord:   {role: standardOnly},
	UpdateRecord:   {role: standardOnly, target: recordTarget},
	DeleteRecord:   {role: standardOnly, target: recordTarget},
	ChangePassword: {role: anyRole},
	ListUsers:      {role: adminOnly},
	ResetPassword:  {role: adminOnly, target: userTarget},
	DeleteUser:     {role: adminOnly, target: userTarget},
}

// RecordFinder and UserFinder resolve targets. Both return
// repository.ErrNotFound for unknown ids.
type RecordFinder interface {
	GetByID(ctx context.Context, id string) (*model.Record, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Request is one authorization question. TargetID is ignored by actions
// without a target.
type Request struct {
	Identity *model.User
	Action   Action
	TargetID string
}

// Target is what an allowed request resolved to, so callers do not read
// it again.
type Target struct {
	Record *model.Record
	User   *model.User
}

// Gate evaluates the decision table, loading targets only once rows 1-3
// have passed.
type Gate struct {
	Records RecordFinder
	Users   UserFinder
}

func NewGate(records RecordFinder, users UserFinder) *Gate {
	return &Gate{Records: records, Users: users}
}

// Authorize returns the resolved target on allow, a *Denial on deny, or
// the lookup error when a target could not be loaded for another reason.
func (g *Gate) Authorize(ctx context.Context, req Request) (Target, error) {
	rl, ok := rules[req.Action]
	if !ok {
		return Target{}, fmt.Errorf("authz: unknown action %q", req.Action)
	}
	deny := func(r Reason, msg string) (Target, error) {
		return Target{}, &Denial{Reason: r, Action: req.Action, Message: msg}
	}

	id := req.Identity
	if id == nil {
		return deny(Unauthenticated, "please log in")
	}
	if rl.role == adminOnly && !id.IsAdmin {
		return deny(ForbiddenRole, "admin privileges required")
	}
	if rl.role == standardOnly && id.IsAdmin {
		return deny(ForbiddenRole, "admins cannot hold records")
	}

	switch rl.target {
	case recordTarget:
		rec, err := g.Records.GetByID(ctx, req.TargetID)
		if errors.Is(err, repository.ErrNotFound) {
			return deny(NotFound, "record not found")
		}
		if err != nil {
			return Target{}, err
		}
		if rec.UserID != id.ID {
			return deny(ForbiddenOwnership, "not your record")
		}
		return Target{Record: rec}, nil
	case userTarget:
		u, err := g.Users.GetByID(ctx, req.TargetID)
		if errors.Is(err, repository.ErrNotFound) {
			return deny(NotFound, "user not found")
		}
		if err != nil {
			return Target{}, err
		}
		if u.IsAdmin {
			return deny(ForbiddenAdminTarget, "cannot modify or delete an admin")
		}
		return Target{User: u}, nil
	}
	return Target{}, nil
}
