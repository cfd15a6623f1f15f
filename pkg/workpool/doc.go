// Package workpool runs tasks with bounded concurrency and typed results.
//
// A Pool[T] holds a fixed number of slots. Submit hands a task a context
// derived from the caller's and returns a Ticket[T] whose buffered
// channel delivers exactly one Outcome[T]:
//
//   - the task's value or error once it has run,
//   - a context error if it was cancelled before acquiring a slot,
//   - a recovered panic as an error.
//
// Cancellation reaches a task three ways, all through its context: the
// caller's ctx, Ticket.Stop, and Pool.Close. Close also waits for
// in-flight tasks to finish, so no task outlives the pool.
package workpool
