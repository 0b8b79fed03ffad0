package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/coldmail-tracker/internal/errors"
	"github.com/unclebandit/coldmail-tracker/internal/model"
)

var errStoreDown = errors.New("store down")

// MockEmailRepo keeps records in memory and applies updates like the
// Postgres repository does.
type MockEmailRepo struct {
	mu      sync.Mutex
	emails  map[string]*model.Email
	clock   time.Time
	failAll bool
	updates []model.EmailUpdate
}

func NewMockEmailRepo() *MockEmailRepo {
	return &MockEmailRepo{
		emails: map[string]*model.Email{},
		clock:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *MockEmailRepo) add(e model.Email) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	m.clock = m.clock.Add(time.Minute)
	e.CreatedAt, e.UpdatedAt = m.clock, m.clock
	m.emails[e.ID] = &e
	return e.ID
}

func (m *MockEmailRepo) ListAll(ctx context.Context) ([]model.Email, error) {
	return m.ListByStatus(ctx, "")
}

func (m *MockEmailRepo) ListByStatus(_ context.Context, st string) ([]model.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	out := []model.Email{}
	for _, e := range m.emails {
		if st == "" || string(e.Status) == st {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockEmailRepo) GetByID(_ context.Context, id string) (*model.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	e, ok := m.emails[id]
	if !ok {
		return nil, appErrors.NewEmailNotFound(id)
	}
	cp := *e
	return &cp, nil
}

func (m *MockEmailRepo) Create(_ context.Context, e *model.Email) error {
	if m.failAll {
		return errStoreDown
	}
	e.ID = m.add(*e)
	m.mu.Lock()
	defer m.mu.Unlock()
	e.CreatedAt = m.emails[e.ID].CreatedAt
	e.UpdatedAt = e.CreatedAt
	return nil
}

func (m *MockEmailRepo) Update(_ context.Context, id string, u model.EmailUpdate) (*model.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	e, ok := m.emails[id]
	if !ok {
		return nil, appErrors.NewEmailNotFound(id)
	}
	m.updates = append(m.updates, u)

	setStr := func(dst **string, o model.Optional[string]) {
		switch {
		case !o.Set:
		case o.Null:
			*dst = nil
		default:
			v := o.Value
			*dst = &v
		}
	}
	setStr(&e.RecipientName, u.RecipientName)
	setStr(&e.RecipientEmail, u.RecipientEmail)
	setStr(&e.Company, u.Company)
	setStr(&e.Subject, u.Subject)
	setStr(&e.Notes, u.Notes)
	setStr(&e.FollowUpDate, u.FollowUpDate)
	setStr(&e.LinkedIn, u.LinkedIn)
	if u.Status.Set {
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
	cp := *e
	return &cp, nil
}

func (m *MockEmailRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStoreDown
	}
	delete(m.emails, id)
	return nil
}

func (m *MockEmailRepo) lastUpdate() model.EmailUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates[len(m.updates)-1]
}
