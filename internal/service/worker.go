package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/coldmail-tracker/internal/cache"
	"github.com/unclebandit/coldmail-tracker/internal/model"
	"github.com/unclebandit/coldmail-tracker/internal/status"
)

// EmailLister defines the methods the worker needs
type EmailLister interface {
	ListAll(ctx context.Context) ([]model.Email, error)
}

// Worker recomputes the shared stats snapshot whenever a record changes.
type Worker struct {
	EmailRepo EmailLister
	Cache     StatsCache
	Events    <-chan model.EmailEvent
	// Done, if set, is called after each event has been handled.
	Done func(ev model.EmailEvent, err error)
}

func NewWorker(repo EmailLister, c StatsCache, events <-chan model.EmailEvent) *Worker {
	return &Worker{
		EmailRepo: repo,
		Cache:     c,
		Events:    events,
	}
}

// Start processes events until the channel closes or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			err := w.Refresh(ctx)
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"event":    ev.Type,
					"email_id": ev.EmailID,
				}).Error("failed to refresh stats")
			}
			if w.Done != nil {
				w.Done(ev, err)
			}
		}
	}
}

// Refresh rebuilds the snapshot from the full collection. On a read failure
// the stale snapshot is dropped so readers fall back to the store. A write
// that lands during the scan wins: the result is discarded and that write's
// own event triggers the next refresh.
func (w *Worker) Refresh(ctx context.Context) error {
	gen, err := w.Cache.Generation(ctx)
	if err != nil {
		return err
	}

	emails, err := w.EmailRepo.ListAll(ctx)
	if err != nil {
		if ierr := w.Cache.Invalidate(ctx); ierr != nil {
			logrus.WithError(ierr).Warn("stats cache invalidation failed")
		}
		return err
	}
	err = w.Cache.Set(ctx, gen, status.ComputeStats(emails))
	if errors.Is(err, cache.ErrStale) {
		logrus.Debug("stats changed during refresh, snapshot not stored")
		return nil
	}
	return err
}
