package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stackproof/stackproof/internal/models"
)

// RunNotFoundError is returned when no run exists for the requested ID.
type RunNotFoundError struct {
	ID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run %q not found", e.ID)
}

func IsRunNotFoundError(err error) bool {
	var target *RunNotFoundError
	return errors.As(err, &target)
}

// RunStore handles run records.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Create records the start of a run.
func (s *RunStore) Create(ctx context.Context, run *models.Run) error {
	_, err := s.db.ExecContext(ctx, queryInsertRun, run.ID, run.Target, run.StartedAt)
	return err
}

// Finish stamps the run as completed at the given time.
func (s *RunStore) Finish(ctx context.Context, id string, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, queryFinishRun, finishedAt, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &RunNotFoundError{ID: id}
	}
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, queryGetRun, id)
	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &RunNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns all runs, most recent first.
func (s *RunStore) List(ctx context.Context) ([]models.Run, error) {
	rows, err := s.db.QueryContext(ctx, queryListRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(scan func(dest ...any) error) (*models.Run, error) {
	var run models.Run
	var finishedAt sql.NullTime
	if err := scan(&run.ID, &run.Target, &run.StartedAt, &finishedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}
