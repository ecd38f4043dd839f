// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published when a registration commits.  It
// carries enough for downstream consumers to log or trigger a welcome
// notification without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registered_at"`
}
