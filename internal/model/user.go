package model

import "time"

// User represents a row of the `users` table. PasswordHash never leaves the
// server; handlers expose users through their own response types.
//
// Fields:
//
//	ID           – random UUID primary key.
//	Username     – unique login name, at least 3 characters, never renamed.
//	PasswordHash – bcrypt hash of the password.
//	IsAdmin      – role flag fixed at creation; registration always stores false.
//	CreatedAt    – creation timestamp (UTC).
type User struct {
	ID           string    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
}

// UserSummary is a non-admin user as listed by the admin view, with the
// number of records they own.
type UserSummary struct {
	ID          string
	Username    string
	CreatedAt   time.Time
	RecordCount int
}

// Account rules shared by registration, password change and admin reset.
// MaxUsernameLen matches the users.username column.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 64
	MinPasswordLen = 6
)
