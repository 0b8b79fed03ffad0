// internal/service/email_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/coldmail-tracker/internal/cache"
	"github.com/unclebandit/coldmail-tracker/internal/model"
	"github.com/unclebandit/coldmail-tracker/internal/queue"
	"github.com/unclebandit/coldmail-tracker/internal/repository"
	"github.com/unclebandit/coldmail-tracker/internal/status"
)

// StatsCache is the optional snapshot cache in front of ComputeStats. Set
// must refuse (cache.ErrStale) a snapshot whose generation was superseded by
// an Invalidate.
type StatsCache interface {
	Get(ctx context.Context) (*model.Stats, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, gen int64, st model.Stats) error
	Invalidate(ctx context.Context) error
}

// EmailService applies the write-path normalization and the status rules on
// top of the record store. Cache and Queue are optional.
type EmailService struct {
	EmailRepo repository.EmailRepositoryInterface
	Cache     StatsCache
	Queue     queue.Queue
	Now       func() time.Time
}

func (s *EmailService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ListEmails returns every record, newest first, narrowed by the precedence
// view ("" or "all" for everything).
func (s *EmailService) ListEmails(ctx context.Context, view string) ([]model.Email, error) {
	emails, err := s.EmailRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if view == "" || view == status.ViewAll {
		return emails, nil
	}
	return status.Filter(emails, view), nil
}

// FilterByStatus is a raw equality match on the stored status field. Unlike
// the precedence view it trusts the stored label.
func (s *EmailService) FilterByStatus(ctx context.Context, st string) ([]model.Email, error) {
	return s.EmailRepo.ListByStatus(ctx, st)
}

func (s *EmailService) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	return s.EmailRepo.GetByID(ctx, id)
}

// CreateEmail inserts a new record. Whatever the caller sent, a new record
// starts as "sent" with every signal false.
func (s *EmailService) CreateEmail(ctx context.Context, in model.CreateEmailInput) (*model.Email, error) {
	e := &model.Email{
		RecipientName:  in.RecipientName,
		RecipientEmail: in.RecipientEmail,
		Company:        in.Company,
		Subject:        in.Subject,
		Notes:          in.Notes,
		FollowUpDate:   emptyToNil(in.FollowUpDate),
		LinkedIn:       in.LinkedIn,
		Status:         model.StatusSent,
	}

	if err := s.EmailRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, model.EventEmailCreated, e.ID, e.Status)
	return e, nil
}

// UpdateEmail applies a partial update. When the update touches status or
// any signal, status is rederived from the merged signals so the stored
// label never disagrees with the booleans.
func (s *EmailService) UpdateEmail(ctx context.Context, id string, u model.EmailUpdate) (*model.Email, error) {
	normalizeUpdate(&u, s.now())

	if u.TouchesSignals() {
		current, err := s.EmailRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sig := status.SignalsOf(*current)
		if u.Opened.Set {
			sig.Opened = u.Opened.Value
		}
		if u.Replied.Set {
			sig.Replied = u.Replied.Value
		}
		if u.FollowedUp.Set {
			sig.FollowedUp = u.FollowedUp.Value
		}
		u.Status = model.Some(status.Derive(sig))
	}

	e, err := s.EmailRepo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, model.EventEmailUpdated, e.ID, e.Status)
	return e, nil
}

// ToggleEmail flips one signal and stores the rederived status. Only the
// three signals, status and updated_at are written.
func (s *EmailService) ToggleEmail(ctx context.Context, id string, field status.Field) (*model.Email, error) {
	current, err := s.EmailRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sig, st, err := status.Toggle(status.SignalsOf(*current), field)
	if err != nil {
		return nil, err
	}

	e, err := s.EmailRepo.Update(ctx, id, model.EmailUpdate{
		Opened:     model.Some(sig.Opened),
		Replied:    model.Some(sig.Replied),
		FollowedUp: model.Some(sig.FollowedUp),
		Status:     model.Some(st),
		UpdatedAt:  s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, model.EventEmailUpdated, e.ID, e.Status)
	return e, nil
}

// DeleteEmail removes the record. A missing id is not an error.
func (s *EmailService) DeleteEmail(ctx context.Context, id string) error {
	if err := s.EmailRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, model.EventEmailDeleted, id, "")
	return nil
}

// Stats returns the aggregate metrics, from the cache when a snapshot exists.
func (s *EmailService) Stats(ctx context.Context) (model.Stats, error) {
	var (
		gen    int64
		genErr error
	)
	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx)
		if err != nil {
			logrus.WithError(err).Warn("stats cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
		// taken before the scan so a concurrent write keeps this result out
		gen, genErr = s.Cache.Generation(ctx)
	}

	emails, err := s.EmailRepo.ListAll(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	st := status.ComputeStats(emails)

	if s.Cache != nil {
		storeSnapshot(ctx, s.Cache, gen, genErr, st)
	}
	return st, nil
}

func storeSnapshot(ctx context.Context, c StatsCache, gen int64, genErr error, st model.Stats) {
	if genErr != nil {
		logrus.WithError(genErr).Warn("stats cache generation unavailable, snapshot not stored")
		return
	}
	err := c.Set(ctx, gen, st)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrStale):
		logrus.Debug("stats changed during read, snapshot not stored")
	default:
		logrus.WithError(err).Warn("stats cache write failed")
	}
}

// afterWrite drops the stats snapshot and announces the change. Neither
// failure affects the write that already happened.
func (s *EmailService) afterWrite(ctx context.Context, t model.EventType, id string, st model.Status) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			logrus.WithError(err).Warn("stats cache invalidation failed")
		}
	}
	if s.Queue != nil {
		ev := model.EmailEvent{Type: t, EmailID: id, Status: st, OccurredAt: s.now()}
		if err := s.Queue.Publish(queue.TopicEmailEvents, ev); err != nil {
			logrus.WithError(err).WithField("email_id", id).Debug("email event not published")
		}
	}
}

func normalizeUpdate(u *model.EmailUpdate, now time.Time) {
	if u.FollowUpDate.Set && !u.FollowUpDate.Null && u.FollowUpDate.Value == "" {
		u.FollowUpDate = model.Null[string]()
	}
	// linkedin is always written: absent or empty clears it
	if !u.LinkedIn.Set || u.LinkedIn.Null || u.LinkedIn.Value == "" {
		u.LinkedIn = model.Null[string]()
	}
	// the signal columns are NOT NULL; an explicit null means false
	for _, b := range []*model.Optional[bool]{&u.Opened, &u.Replied, &u.FollowedUp} {
		if b.Set && b.Null {
			*b = model.Some(false)
		}
	}
	u.UpdatedAt = now
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
