// internal/model/event.go
package model

import "time"

type EventType string

const (
	EventEmailCreated EventType = "email.created"
	EventEmailUpdated EventType = "email.updated"
	EventEmailDeleted EventType = "email.deleted"
)

// EmailEvent is published after every successful write to the record store.
type EmailEvent struct {
	Type       EventType `json:"type"`
	EmailID    string    `json:"email_id"`
	Status     Status    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
