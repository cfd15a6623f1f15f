package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// DefaultAttempts is the attempt budget used when Config.Attempts is zero.
const DefaultAttempts = 3

// ErrNotReady signals that the polled state is not yet observable. Operations
// that have no more specific error to report should return it.
var ErrNotReady = errors.New("polled state not ready")

// Operation is a single idempotent read of external state. A non-nil error
// means "retry"; a nil error is success regardless of the value.
type Operation[T any] func(ctx context.Context) (T, error)

// Config bounds a poll: how many attempts to make and how long to sleep
// between them. The zero value means DefaultAttempts with no delay.
type Config struct {
	Attempts int
	Interval time.Duration
}

func (c Config) normalized() Config {
	if c.Attempts < 1 {
		c.Attempts = DefaultAttempts
	}
	if c.Interval < 0 {
		c.Interval = 0
	}
	return c
}

// ExhaustedError is returned when the attempt budget is consumed without a
// single success. It wraps the last error observed.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry budget exhausted after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// IsExhaustedError reports whether err is (or wraps) an ExhaustedError.
func IsExhaustedError(err error) bool {
	var e *ExhaustedError
	return errors.As(err, &e)
}

// Poll invokes op until it succeeds or cfg.Attempts attempts have been made,
// sleeping cfg.Interval between attempts. The first success returns
// immediately; exhausting the budget returns the zero value of T and an
// *ExhaustedError. Context cancellation aborts the poll with ctx.Err().
func Poll[T any](ctx context.Context, cfg Config, op Operation[T]) (T, error) {
	cfg = cfg.normalized()
	log := zap.S().Named("probe")

	attempts := 0
	wrapped := func() (T, error) {
		attempts++
		log.Infof("retryUntil iteration number %d", attempts)
		return op(ctx)
	}

	// Attempts is the only budget; disable the elapsed-time cap backoff
	// applies by default (15m), which would truncate long intervals.
	v, err := backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(backoff.NewConstantBackOff(cfg.Interval)),
		backoff.WithMaxTries(uint(cfg.Attempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		if ctx.Err() != nil {
			return v, ctx.Err()
		}
		return v, &ExhaustedError{Attempts: attempts, LastErr: err}
	}
	return v, nil
}
