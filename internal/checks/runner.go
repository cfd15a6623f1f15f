package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stackproof/stackproof/internal/models"
	"github.com/stackproof/stackproof/internal/report"
	"github.com/stackproof/stackproof/pkg/workpool"
)

// Summary aggregates the outcome of one run.
type Summary struct {
	RunID   string
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// Ok reports whether no check failed.
func (s *Summary) Ok() bool {
	return s.Failed == 0
}

// Runner executes checks concurrently and records their results.
type Runner struct {
	store   *report.Store
	deps    *Deps
	workers int
	log     *zap.SugaredLogger
}

func NewRunner(store *report.Store, deps *Deps, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		store:   store,
		deps:    deps,
		workers: workers,
		log:     zap.S().Named("runner"),
	}
}

// Run executes all checks against the target, persists every result,
// and returns the run summary. A failing check does not fail Run; only
// infrastructure errors (storage, cancellation) do.
func (r *Runner) Run(ctx context.Context, target string, checks []Check) (*Summary, error) {
	run := &models.Run{
		ID:        uuid.NewString(),
		Target:    target,
		StartedAt: time.Now().UTC(),
	}
	if err := r.store.Runs().Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	pool := workpool.New[models.CheckResult](r.workers)
	defer pool.Close()

	tickets := make([]*workpool.Ticket[models.CheckResult], len(checks))
	for i, check := range checks {
		c := check
		tickets[i] = pool.Submit(ctx, func(taskCtx context.Context) (models.CheckResult, error) {
			return r.execute(taskCtx, run.ID, c), nil
		})
	}

	summary := &Summary{RunID: run.ID, Total: len(checks)}
	for i, ticket := range tickets {
		var outcome workpool.Outcome[models.CheckResult]
		select {
		case outcome = <-ticket.C():
			// a cancelled run must not record the checks it interrupted
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if outcome.Err != nil {
			return nil, fmt.Errorf("check %q: %w", checks[i].Name, outcome.Err)
		}

		result := outcome.Value
		if err := r.store.Results().Insert(ctx, &result); err != nil {
			return nil, fmt.Errorf("failed to record result for %q: %w", result.Name, err)
		}
		switch result.Status {
		case models.StatusPass:
			summary.Passed++
		case models.StatusFail:
			summary.Failed++
		case models.StatusSkip:
			summary.Skipped++
		}
	}

	if err := r.store.Runs().Finish(ctx, run.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to finish run: %w", err)
	}
	return summary, nil
}

func (r *Runner) execute(ctx context.Context, runID string, check Check) models.CheckResult {
	start := time.Now()
	err := check.Fn(ctx, r.deps)
	elapsed := time.Since(start)

	result := models.CheckResult{
		RunID:    runID,
		Name:     check.Name,
		Category: check.Category,
		Elapsed:  elapsed,
	}
	switch {
	case err == nil:
		result.Status = models.StatusPass
		r.log.Infow("check passed", "name", check.Name, "elapsed", elapsed)
	case IsSkipError(err):
		result.Status = models.StatusSkip
		result.Detail = err.Error()
		r.log.Infow("check skipped", "name", check.Name, "reason", err.Error())
	default:
		result.Status = models.StatusFail
		result.Detail = err.Error()
		r.log.Warnw("check failed", "name", check.Name, "error", err.Error())
	}
	return result
}
