// Package checks defines the validation checks and the runner that
// executes them against a deployed target.
package checks

import (
	"context"
	"errors"
	"fmt"

	"github.com/stackproof/stackproof/internal/appapi"
	"github.com/stackproof/stackproof/internal/cloud"
	"github.com/stackproof/stackproof/internal/config"
	"github.com/stackproof/stackproof/internal/mailbox"
)

// Deps carries the clients a check may need. Fields are nil when the
// corresponding target is not configured; checks skip in that case.
type Deps struct {
	Compute   *cloud.Compute
	Storage   *cloud.Storage
	Database  *cloud.Database
	Messaging *cloud.Messaging
	Functions *cloud.Functions
	Identity  *cloud.Identity
	Audit     *cloud.Audit
	App       *appapi.Client
	Mail      *mailbox.Client
	Config    *config.Configuration
}

// Check is a single named validation.
type Check struct {
	Name     string
	Category string
	Fn       func(ctx context.Context, deps *Deps) error
}

// SkipError marks a check as not applicable rather than failed.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped: %s", e.Reason)
}

// Skip returns a SkipError with the given reason.
func Skip(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

func IsSkipError(err error) bool {
	var target *SkipError
	return errors.As(err, &target)
}
