package workpool

import (
	"context"
)

// Task is a unit of work executed by the pool.
type Task[T any] func(ctx context.Context) (T, error)

// Outcome carries the value or error produced by a task.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Ticket represents a pending outcome for a submitted task.
type Ticket[T any] struct {
	out    chan Outcome[T]
	cancel context.CancelFunc
}

// C returns the channel the outcome is delivered on. It is buffered, so
// the outcome is retained even if nobody is receiving yet.
func (t *Ticket[T]) C() <-chan Outcome[T] {
	return t.out
}

// Stop cancels the task's context. The ticket still delivers an outcome:
// either the task's reaction to cancellation or, if it never got a slot,
// a context error.
func (t *Ticket[T]) Stop() {
	t.cancel()
}
