package audit

import (
	"context"
	"fmt"
)

// Queue is a Store that buffers events on a channel for a Worker to drain
// into the real sink. Appends never block the request path: when the buffer
// is full the event is dropped and reported, since audit is best-effort
// here.
type Queue struct {
	sink  Store
	inbox chan Event
}

// NewQueue builds a buffered queue in front of sink.
func NewQueue(sink Store, size int) *Queue {
	return &Queue{sink: sink, inbox: make(chan Event, size)}
}

// Events is the channel a Worker consumes.
func (q *Queue) Events() <-chan Event { return q.inbox }

func (q *Queue) Append(ctx context.Context, event Event) error {
	select {
	case q.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("audit queue full, event dropped")
	}
}

// ListByStudent reads from the sink. Events still in the buffer are not
// visible until the worker persists them.
func (q *Queue) ListByStudent(ctx context.Context, studentID int64) ([]Event, error) {
	return q.sink.ListByStudent(ctx, studentID)
}
