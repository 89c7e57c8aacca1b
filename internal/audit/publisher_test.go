package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lettings/pkg/domain"
	"lettings/pkg/requestcontext"
)

func TestPublisher_EnrichesFromContext(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithPublisherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	propertyID := id.PropertyID(uuid.New())
	actor := id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleAgent}
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	ctx := requestcontext.WithActor(context.Background(), actor)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "ua", "Firefox on Linux")
	ctx = requestcontext.WithTime(ctx, now)

	pub.Emit(ctx, Event{Action: ActionApplicationTransitioned, PropertyID: propertyID, From: "SUBMITTED", To: "AGENT_ACCEPTED"})

	events, err := store.ListByProperty(context.Background(), propertyID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, actor.ID, e.ActorID)
	assert.Equal(t, id.RoleAgent, e.ActorRole)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "Firefox on Linux", e.Device)
	assert.Equal(t, now, e.Timestamp)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(16))
	propertyID := id.PropertyID(uuid.New())

	for range 10 {
		pub.Emit(context.Background(), Event{Action: ActionReservationCreated, PropertyID: propertyID})
	}
	pub.Close()

	events, err := store.ListByProperty(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestInMemoryStore_ListReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	propertyID := id.PropertyID(uuid.New())
	require.NoError(t, store.Append(context.Background(), Event{Action: ActionListingRegistered, PropertyID: propertyID}))

	events, _ := store.ListByProperty(context.Background(), propertyID)
	events[0].Action = "tampered"

	again, _ := store.ListByProperty(context.Background(), propertyID)
	assert.Equal(t, ActionListingRegistered, again[0].Action)
}
