// Package queue defines the account events exchanged over RabbitMQ and the
// consumer that turns them into an audit log.
package queue

// Account event types.
const (
	UserRegistered      = "user.registered"
	UserPasswordChanged = "user.password_changed"
	UserPasswordReset   = "user.password_reset"
	UserDeleted         = "user.deleted"
)

// AccountEvent is published after an account changes. ActorID is the
// admin who acted on someone else's account, empty otherwise.
type AccountEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	ActorID    string `json:"actor_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
