package queue

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/coldmail-tracker/internal/model"
)

func newTestQueue() *InMemoryQueue {
	q := NewInMemoryQueue()
	q.Backoff = time.Millisecond
	return q
}

func TestPublishWithoutSubscribers(t *testing.T) {
	q := newTestQueue()
	assert.Error(t, q.Publish(TopicEmailEvents, model.EmailEvent{}))
}

func TestPublishFansOut(t *testing.T) {
	q := newTestQueue()
	var wg sync.WaitGroup
	wg.Add(2)
	var hits atomic.Int32
	for i := 0; i < 2; i++ {
		require.NoError(t, q.Subscribe("t", func(payload any) error {
			hits.Add(1)
			wg.Done()
			return nil
		}))
	}

	require.NoError(t, q.Publish("t", 1))
	wg.Wait()
	assert.Equal(t, int32(2), hits.Load())
}

func TestProcessJobRetriesThenSucceeds(t *testing.T) {
	q := newTestQueue()
	done := make(chan struct{})
	var attempts atomic.Int32
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.Publish("t", "x"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never succeeded")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestProcessJobGivesUp(t *testing.T) {
	q := newTestQueue()
	q.MaxRetries = 2
	var attempts atomic.Int32
	q.processJob(func(payload any) error {
		attempts.Add(1)
		return errors.New("permanent")
	}, JobPayload{Topic: "t", MaxRetries: q.MaxRetries})

	assert.Equal(t, int32(3), attempts.Load())
}

func TestDecodeEvent(t *testing.T) {
	ev := model.EmailEvent{Type: model.EventEmailUpdated, EmailID: "abc", Status: model.StatusReplied}

	got, err := DecodeEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	got, err = DecodeEvent(&ev)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	got, err = DecodeEvent([]byte(`{"type":"email.deleted","email_id":"xyz"}`))
	require.NoError(t, err)
	assert.Equal(t, model.EventEmailDeleted, got.Type)
	assert.Equal(t, "xyz", got.EmailID)

	_, err = DecodeEvent([]byte(`nope`))
	assert.Error(t, err)
	_, err = DecodeEvent(42)
	assert.Error(t, err)
}

func TestAuditLogSubscriberAcceptsGarbage(t *testing.T) {
	q := newTestQueue()
	require.NoError(t, StartAuditLogSubscriber(q))

	q.mu.Lock()
	handler := q.handlers[TopicEmailEvents][0]
	q.mu.Unlock()

	assert.NoError(t, handler(model.EmailEvent{Type: model.EventEmailCreated, EmailID: "a"}))
	assert.NoError(t, handler("not an event"), "invalid payloads are dropped, not retried")
}

type recordingQueue struct {
	mu    sync.Mutex
	got   []any
	ready chan struct{}
}

func (r *recordingQueue) Publish(topic string, payload any) error {
	r.mu.Lock()
	r.got = append(r.got, payload)
	r.mu.Unlock()
	r.ready <- struct{}{}
	return nil
}

func (r *recordingQueue) Subscribe(string, func(any) error) error { return nil }

func TestEventForwarder(t *testing.T) {
	q := newTestQueue()
	target := &recordingQueue{ready: make(chan struct{}, 1)}
	require.NoError(t, StartEventForwarder(q, target))

	ev := model.EmailEvent{Type: model.EventEmailDeleted, EmailID: "gone"}
	require.NoError(t, q.Publish(TopicEmailEvents, ev))
	select {
	case <-target.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}

	target.mu.Lock()
	defer target.mu.Unlock()
	require.Len(t, target.got, 1)
	assert.Equal(t, ev, target.got[0])
}
