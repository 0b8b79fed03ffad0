package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/coldmail-tracker/internal/model"
)

// TopicEmailEvents carries model.EmailEvent payloads.
const TopicEmailEvents = "email_events"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue fans each published payload out to every subscriber of the
// topic, retrying a failing handler with linear backoff.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	MaxRetries int
	Backoff    time.Duration
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Topic: topic, Payload: payload, MaxRetries: q.MaxRetries}
		go q.processJob(handler, job)
	}
	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	log := logrus.WithField("topic", job.Topic)
	for {
		err := handler(job.Payload)
		if err == nil {
			log.WithField("attempt", job.RetryCount+1).Debug("job processed")
			return
		}

		job.RetryCount++
		if job.RetryCount > job.MaxRetries {
			log.WithError(err).Errorf("job permanently failed after %d attempts", job.RetryCount)
			return
		}
		log.WithError(err).Warnf("job failed (attempt %d/%d)", job.RetryCount, job.MaxRetries)

		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// DecodeEvent accepts an event published in-process (model.EmailEvent or a
// pointer to one) or delivered by the broker as raw JSON.
func DecodeEvent(payload any) (model.EmailEvent, error) {
	switch p := payload.(type) {
	case model.EmailEvent:
		return p, nil
	case *model.EmailEvent:
		if p == nil {
			return model.EmailEvent{}, fmt.Errorf("nil event")
		}
		return *p, nil
	case []byte:
		var ev model.EmailEvent
		if err := json.Unmarshal(p, &ev); err != nil {
			return model.EmailEvent{}, fmt.Errorf("decode event: %w", err)
		}
		return ev, nil
	}
	return model.EmailEvent{}, fmt.Errorf("unexpected event payload %T", payload)
}

// StartAuditLogSubscriber writes one log line per record change.
func StartAuditLogSubscriber(q Queue) error {
	return q.Subscribe(TopicEmailEvents, func(payload any) error {
		ev, err := DecodeEvent(payload)
		if err != nil {
			logrus.WithError(err).Warn("dropping invalid email event")
			return nil // no retry
		}
		logrus.WithFields(logrus.Fields{
			"event":       ev.Type,
			"email_id":    ev.EmailID,
			"status":      ev.Status,
			"occurred_at": ev.OccurredAt.Format(time.RFC3339),
		}).Info("email record changed")
		return nil
	})
}

// StartEventForwarder republishes every in-process email event to target,
// typically the RabbitMQ queue consumed by cmd/worker.
func StartEventForwarder(q Queue, target Queue) error {
	return q.Subscribe(TopicEmailEvents, func(payload any) error {
		ev, err := DecodeEvent(payload)
		if err != nil {
			logrus.WithError(err).Warn("dropping invalid email event")
			return nil
		}
		return target.Publish(TopicEmailEvents, ev)
	})
}
