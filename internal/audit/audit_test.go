package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/pkg/requestcontext"
)

func TestPublisherStampsTimestampFromRequestClock(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)

	pinned := time.Date(2026, 1, 12, 8, 15, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), pinned)

	require.NoError(t, publisher.Emit(ctx, Event{StudentID: 7, GroupID: 42, Action: ActionEnrolled}))

	events, err := store.ListByStudent(ctx, 7)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, pinned, events[0].Timestamp)
}

func TestPublisherKeepsExplicitTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)

	explicit := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, publisher.Emit(context.Background(), Event{
		Timestamp: explicit, StudentID: 7, Action: ActionMarkRefused,
	}))

	events, err := store.ListByStudent(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, explicit, events[0].Timestamp)
}

func TestInMemoryStoreFiltersByStudent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Event{StudentID: 7, Action: ActionEnrolled}))
	require.NoError(t, store.Append(ctx, Event{StudentID: 8, Action: ActionEnrolled}))
	require.NoError(t, store.Append(ctx, Event{StudentID: 7, Action: ActionAttendanceMarked}))

	events, err := store.ListByStudent(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorkerDrainsQueue(t *testing.T) {
	sink := NewInMemoryStore()
	queue := NewQueue(sink, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWorker(sink, queue.Events()).Run(ctx) }()

	publisher := NewPublisher(queue)
	require.NoError(t, publisher.Emit(ctx, Event{StudentID: 7, Action: ActionEnrolled}))

	// The worker persists asynchronously; poll briefly.
	deadline := time.After(2 * time.Second)
	for {
		events, err := sink.ListByStudent(ctx, 7)
		require.NoError(t, err)
		if len(events) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("worker never drained the event")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	queue := NewQueue(NewInMemoryStore(), 1)
	ctx := context.Background()

	// No worker draining: the second append overflows.
	require.NoError(t, queue.Append(ctx, Event{StudentID: 7}))
	assert.Error(t, queue.Append(ctx, Event{StudentID: 7}))
}
