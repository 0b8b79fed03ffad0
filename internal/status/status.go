// Package status derives an outreach record's display status from its three
// signals and computes the aggregate statistics over a record set.
//
// Precedence is replied > followed-up > opened > sent. Derive is the only
// place that encodes it; toggling, view filtering and the update path all go
// through it so the stored label and the filter bucket cannot drift apart.
package status

import (
	"fmt"

	"github.com/unclebandit/coldmail-tracker/internal/model"
)

// ViewAll matches every record.
const ViewAll = "all"

// Signals is the boolean triple a status is derived from.
type Signals struct {
	Opened     bool
	Replied    bool
	FollowedUp bool
}

// SignalsOf extracts the triple from a record.
func SignalsOf(e model.Email) Signals {
	return Signals{Opened: e.Opened, Replied: e.Replied, FollowedUp: e.FollowedUp}
}

// Derive applies the precedence rule.
func Derive(s Signals) model.Status {
	switch {
	case s.Replied:
		return model.StatusReplied
	case s.FollowedUp:
		return model.StatusFollowedUp
	case s.Opened:
		return model.StatusOpened
	default:
		return model.StatusSent
	}
}

// Field names one of the toggleable signals.
type Field string

const (
	FieldOpened     Field = "opened"
	FieldReplied    Field = "replied"
	FieldFollowedUp Field = "followed-up"
)

// ParseField accepts the wire names of the toggleable signals. "followed_up"
// is accepted as an alias of "followed-up".
func ParseField(s string) (Field, error) {
	switch s {
	case string(FieldOpened):
		return FieldOpened, nil
	case string(FieldReplied):
		return FieldReplied, nil
	case string(FieldFollowedUp), "followed_up":
		return FieldFollowedUp, nil
	}
	return "", fmt.Errorf("unknown toggle field %q", s)
}

// Toggle flips exactly one signal and recomputes the status from the
// post-toggle triple.
func Toggle(s Signals, f Field) (Signals, model.Status, error) {
	switch f {
	case FieldOpened:
		s.Opened = !s.Opened
	case FieldReplied:
		s.Replied = !s.Replied
	case FieldFollowedUp:
		s.FollowedUp = !s.FollowedUp
	default:
		return s, Derive(s), fmt.Errorf("unknown toggle field %q", f)
	}
	return s, Derive(s), nil
}

// Matches is the precedence filter predicate: a record is in bucket v when
// its derived status equals v. "all" (or "") matches everything; any other
// value falls back to equality on the stored status.
func Matches(e model.Email, view string) bool {
	switch view {
	case "", ViewAll:
		return true
	case string(model.StatusSent), string(model.StatusOpened),
		string(model.StatusReplied), string(model.StatusFollowedUp):
		return string(Derive(SignalsOf(e))) == view
	}
	return string(e.Status) == view
}

// Filter returns the records matching view, preserving order.
func Filter(emails []model.Email, view string) []model.Email {
	out := make([]model.Email, 0, len(emails))
	for _, e := range emails {
		if Matches(e, view) {
			out = append(out, e)
		}
	}
	return out
}
