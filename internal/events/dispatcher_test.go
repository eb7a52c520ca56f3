package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var got []EventType
	d.Subscribe(EventTicketUpdated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return errors.New("webhook down")
	})
	d.Subscribe(EventTicketUpdated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	actor := ActorFromSession(domain.Session{UserID: 3, Username: "ann", Role: domain.RoleUser})
	event := New(EventTicketUpdated, 9, actor, TicketUpdatedPayload{NewStatus: domain.TicketStatusOpen})
	require.NoError(t, d.Publish(context.Background(), event))
	require.NoError(t, d.Publish(context.Background(), New(EventTicketCreated, 0, actor, nil)))

	assert.Equal(t, []EventType{EventTicketUpdated, EventTicketUpdated}, got)
	assert.Equal(t, 1, logs.Len())
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, int64(3), event.Actor.UserID)
}
