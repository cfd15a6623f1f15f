// Package probe implements a bounded retry-until-success poller for
// eventually-consistent external state.
//
// Most of the systems this suite talks to (mail capture inboxes, CloudWatch
// log groups, CloudTrail event history) are eventually consistent: an action
// that just happened may not be visible to a read issued immediately after.
// Poll bridges that gap by re-running a read operation at a fixed interval
// until it produces a value or the attempt budget runs out.
//
// # Operation Contract
//
// An Operation is a typed, context-aware read:
//
//	type Operation[T any] func(ctx context.Context) (T, error)
//
// Returning a non-nil error means "not ready yet, try again". Returning a nil
// error is success, whatever the value — including zero values such as false
// or "". There is no truthiness: an operation that has nothing better to
// report can return ErrNotReady. Operations must be idempotent pure reads,
// since they may be invoked several times.
//
// # Execution Model
//
// Attempts run strictly sequentially on the calling goroutine:
//
//	attempt 1 ── fail ── sleep Interval ── attempt 2 ── fail ── ... ── attempt N
//
// The first success short-circuits the remaining budget. No sleep follows the
// final failed attempt; the caller gets the error immediately. Each attempt
// emits one log line with its 1-based index.
//
// Poll holds no shared state: concurrent calls are independent and reentrant.
// Cancelling the context aborts both an in-flight attempt (if the operation
// honors it) and any pending inter-attempt delay.
//
// # Failure
//
// When every attempt fails, Poll returns *ExhaustedError carrying the number
// of attempts made and the last error observed:
//
//	groups, err := probe.Poll(ctx, probe.Config{Attempts: 5, Interval: 2 * time.Second},
//	    func(ctx context.Context) ([]string, error) {
//	        return audit.FindLogEvents(ctx, group, pattern)
//	    })
//	if probe.IsExhaustedError(err) {
//	    // budget consumed, treat as assertion failure
//	}
//
// The retry engine underneath is cenkalti/backoff with a constant interval
// and a hard cap on tries; probe narrows it to the fixed-delay, fixed-budget
// polling this suite needs.
package probe
