package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/unclebandit/coldmail-tracker/internal/model"
	"github.com/unclebandit/coldmail-tracker/internal/status"
)

// Tracker holds the client-side view of the collection: the full list, the
// last fetched stats and the selected precedence view. Every write is
// followed by a reload of both the list and the stats.
type Tracker struct {
	API *Client

	mu     sync.RWMutex
	emails []model.Email
	stats  model.Stats
	view   string
}

func NewTracker(api *Client) *Tracker {
	return &Tracker{API: api, view: status.ViewAll}
}

// Reload fetches the list and the stats. The two reads are independent and
// need not agree with each other.
func (t *Tracker) Reload(ctx context.Context) error {
	emails, err := t.API.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load emails: %w", err)
	}
	t.mu.Lock()
	t.emails = emails
	t.mu.Unlock()

	st, err := t.API.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	t.mu.Lock()
	t.stats = st
	t.mu.Unlock()
	return nil
}

func (t *Tracker) Create(ctx context.Context, in model.CreateEmailInput) (*model.Email, error) {
	e, err := t.API.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return e, t.Reload(ctx)
}

// Save sends an edit. linkedin is cleared by the server when omitted, so
// callers editing a record should carry its current value.
func (t *Tracker) Save(ctx context.Context, id string, u model.EmailUpdate) (*model.Email, error) {
	e, err := t.API.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	return e, t.Reload(ctx)
}

func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.API.Delete(ctx, id); err != nil {
		return err
	}
	return t.Reload(ctx)
}

// Toggle flips one signal of a record (fetched if not loaded yet), sends the new booleans and
// derived status as a partial update, then reloads.
func (t *Tracker) Toggle(ctx context.Context, id string, field status.Field) (*model.Email, error) {
	current, ok := t.find(id)
	if !ok {
		e, err := t.API.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		current = *e
	}

	sig, st, err := status.Toggle(status.SignalsOf(current), field)
	if err != nil {
		return nil, err
	}

	u := model.EmailUpdate{
		Opened:     model.Some(sig.Opened),
		Replied:    model.Some(sig.Replied),
		FollowedUp: model.Some(sig.FollowedUp),
		Status:     model.Some(st),
	}
	if current.LinkedIn != nil {
		u.LinkedIn = model.Some(*current.LinkedIn)
	}
	return t.Save(ctx, id, u)
}

// SetView selects the precedence bucket shown by Visible.
func (t *Tracker) SetView(view string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view = view
}

// Visible returns the loaded records in the selected view.
func (t *Tracker) Visible() []model.Email {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return FilterView(t.emails, t.view)
}

func (t *Tracker) Emails() []model.Email {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.Email(nil), t.emails...)
}

func (t *Tracker) Stats() model.Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

func (t *Tracker) find(id string) (model.Email, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.emails {
		if e.ID == id {
			return e, true
		}
	}
	return model.Email{}, false
}

// FilterView applies the precedence filter to a loaded list.
func FilterView(emails []model.Email, view string) []model.Email {
	return status.Filter(emails, view)
}
