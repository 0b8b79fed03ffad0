package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/coldmail-tracker/internal/errors"
	"github.com/unclebandit/coldmail-tracker/internal/model"
)

// MemoryEmailRepository is a process-local record store with the same
// semantics as EmailRepository. It backs tests and the server's
// --memory mode.
type MemoryEmailRepository struct {
	mu     sync.RWMutex
	emails map[string]model.Email
	seq    int64

	// Err, when set, is returned by every operation.
	Err error
}

func NewMemoryEmailRepository() *MemoryEmailRepository {
	return &MemoryEmailRepository{emails: map[string]model.Email{}}
}

func (r *MemoryEmailRepository) ListAll(ctx context.Context) ([]model.Email, error) {
	return r.list(func(model.Email) bool { return true })
}

func (r *MemoryEmailRepository) ListByStatus(ctx context.Context, status string) ([]model.Email, error) {
	return r.list(func(e model.Email) bool { return string(e.Status) == status })
}

func (r *MemoryEmailRepository) list(keep func(model.Email) bool) ([]model.Email, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	emails := []model.Email{}
	for _, e := range r.emails {
		if keep(e) {
			emails = append(emails, e)
		}
	}
	sort.Slice(emails, func(i, j int) bool {
		return emails[i].CreatedAt.After(emails[j].CreatedAt)
	})
	return emails, nil
}

func (r *MemoryEmailRepository) GetByID(ctx context.Context, id string) (*model.Email, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.emails[id]
	if !ok {
		return nil, appErrors.NewEmailNotFound(id)
	}
	return &e, nil
}

func (r *MemoryEmailRepository) Create(ctx context.Context, e *model.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	// strictly increasing so created_at ordering is stable within a test
	r.seq++
	e.CreatedAt = time.Now().UTC().Add(time.Duration(r.seq) * time.Microsecond)
	e.UpdatedAt = e.CreatedAt
	r.emails[e.ID] = *e
	return nil
}

func (r *MemoryEmailRepository) Update(ctx context.Context, id string, u model.EmailUpdate) (*model.Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.emails[id]
	if !ok {
		return nil, appErrors.NewEmailNotFound(id)
	}

	applyString(&e.RecipientName, u.RecipientName)
	applyString(&e.RecipientEmail, u.RecipientEmail)
	applyString(&e.Company, u.Company)
	applyString(&e.Subject, u.Subject)
	applyString(&e.Notes, u.Notes)
	applyString(&e.FollowUpDate, u.FollowUpDate)
	applyString(&e.LinkedIn, u.LinkedIn)
	if u.Status.Set && !u.Status.Null {
		e.Status = u.Status.Value
	}
	if u.Opened.Set {
		e.Opened = u.Opened.Value
	}
	if u.Replied.Set {
		e.Replied = u.Replied.Value
	}
	if u.FollowedUp.Set {
		e.FollowedUp = u.FollowedUp.Value
	}
	e.UpdatedAt = u.UpdatedAt
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}

	r.emails[id] = e
	return &e, nil
}

func (r *MemoryEmailRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.emails, id)
	return nil
}

func applyString(dst **string, o model.Optional[string]) {
	switch {
	case !o.Set:
	case o.Null:
		*dst = nil
	default:
		v := o.Value
		*dst = &v
	}
}

var _ EmailRepositoryInterface = (*MemoryEmailRepository)(nil)
