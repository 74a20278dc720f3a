// Package service implements the account, record and user-management
// operations. Each operation asks the authorization gate first and then
// validates its input; failures are sentinel errors or *authz.Denial.
package service

import "errors"

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrWeakUsername       = errors.New("username must be at least 3 characters")
	ErrLongUsername       = errors.New("username must be at most 64 characters")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingPasswords   = errors.New("old and new password are required")
	ErrWrongPassword      = errors.New("old password is incorrect")
)
