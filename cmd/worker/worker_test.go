package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/coldmail-tracker/internal/model"
)

func TestForwardEventsDecodesBrokerBody(t *testing.T) {
	events := make(chan model.EmailEvent, 1)
	handle := forwardEvents(context.Background(), events)

	body, err := json.Marshal(model.EmailEvent{
		Type:       model.EventEmailUpdated,
		EmailID:    "abc",
		Status:     model.StatusReplied,
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, handle(body))
	ev := <-events
	assert.Equal(t, model.EventEmailUpdated, ev.Type)
	assert.Equal(t, "abc", ev.EmailID)
	assert.Equal(t, model.StatusReplied, ev.Status)
}

func TestForwardEventsDropsGarbage(t *testing.T) {
	events := make(chan model.EmailEvent, 1)
	handle := forwardEvents(context.Background(), events)

	assert.NoError(t, handle([]byte("{not json")))
	assert.Empty(t, events)
}

func TestForwardEventsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handle := forwardEvents(ctx, make(chan model.EmailEvent))

	err := handle(model.EmailEvent{Type: model.EventEmailDeleted})
	assert.ErrorIs(t, err, context.Canceled)
}
