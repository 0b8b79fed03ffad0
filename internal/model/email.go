// internal/model/email.go
package model

import "time"

// Status is the single display label derived from the three outreach signals.
type Status string

const (
	StatusSent       Status = "sent"
	StatusOpened     Status = "opened"
	StatusReplied    Status = "replied"
	StatusFollowedUp Status = "followed-up"
)

// Email is one tracked outreach attempt.
type Email struct {
	ID             string    `db:"id" json:"id"`
	RecipientName  *string   `db:"recipient_name" json:"recipient_name"`
	RecipientEmail *string   `db:"recipient_email" json:"recipient_email"`
	Company        *string   `db:"company" json:"company"`
	Subject        *string   `db:"subject" json:"subject"`
	Notes          *string   `db:"notes" json:"notes"`
	FollowUpDate   *string   `db:"follow_up_date" json:"follow_up_date"` // YYYY-MM-DD
	Status         Status    `db:"status" json:"status"`
	Opened         bool      `db:"opened" json:"opened"`
	Replied        bool      `db:"replied" json:"replied"`
	FollowedUp     bool      `db:"followed_up" json:"followed_up"`
	LinkedIn       *string   `db:"linkedin" json:"linkedin"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CreateEmailInput is the body accepted on create. Status and the signal
// booleans are not part of it: a new record always starts as "sent".
type CreateEmailInput struct {
	RecipientName  *string `json:"recipient_name"`
	RecipientEmail *string `json:"recipient_email"`
	Company        *string `json:"company"`
	Subject        *string `json:"subject"`
	Notes          *string `json:"notes"`
	FollowUpDate   *string `json:"follow_up_date"`
	LinkedIn       *string `json:"linkedin"`
}

// EmailUpdate is a partial update. Only fields with Set == true are written.
type EmailUpdate struct {
	RecipientName  Optional[string] `json:"recipient_name,omitzero"`
	RecipientEmail Optional[string] `json:"recipient_email,omitzero"`
	Company        Optional[string] `json:"company,omitzero"`
	Subject        Optional[string] `json:"subject,omitzero"`
	Notes          Optional[string] `json:"notes,omitzero"`
	FollowUpDate   Optional[string] `json:"follow_up_date,omitzero"`
	LinkedIn       Optional[string] `json:"linkedin,omitzero"`
	Status         Optional[Status] `json:"status,omitzero"`
	Opened         Optional[bool]   `json:"opened,omitzero"`
	Replied        Optional[bool]   `json:"replied,omitzero"`
	FollowedUp     Optional[bool]   `json:"followed_up,omitzero"`
	UpdatedAt      time.Time        `json:"-"`
}

// TouchesSignals reports whether the update changes anything status is derived from.
func (u EmailUpdate) TouchesSignals() bool {
	return u.Status.Set || u.Opened.Set || u.Replied.Set || u.FollowedUp.Set
}
