package models

import "time"

// Domain event types published to the user-events topic.
const (
	EventUserRegistered = "USER_REGISTERED"
	EventUserLogin      = "USER_LOGIN"
	EventPasswordReset  = "PASSWORD_RESET"
	EventUserCreated    = "USER_CREATED"
	EventUserUpdated    = "USER_UPDATED"
	EventUserDeleted    = "USER_DELETED"
)

// UserEvent is a domain event emitted after a user mutation.
// Delivery is best-effort and at-least-once; consumers must be idempotent.
type UserEvent struct {
	Type      string         `json:"type"`
	UserID    string         `json:"userId"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
