package report

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/stackproof/stackproof/internal/models"
)

// ResultStore handles check result records.
type ResultStore struct {
	db *sql.DB
}

func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Insert records one check outcome.
func (s *ResultStore) Insert(ctx context.Context, result *models.CheckResult) error {
	_, err := s.db.ExecContext(ctx, queryInsertResult,
		result.RunID,
		result.Name,
		result.Category,
		string(result.Status),
		result.Detail,
		result.Elapsed.Milliseconds(),
	)
	return err
}

// List returns check results matching the given options.
func (s *ResultStore) List(ctx context.Context, opts ...ListOption) ([]models.CheckResult, error) {
	builder := sq.Select(
		"run_id",
		"name",
		"category",
		"status",
		"detail",
		"elapsed_ms",
	).From("check_results").
		OrderBy("category", "name")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.CheckResult
	for rows.Next() {
		var r models.CheckResult
		var status string
		var elapsedMs int64
		err := rows.Scan(
			&r.RunID,
			&r.Name,
			&r.Category,
			&status,
			&r.Detail,
			&elapsedMs,
		)
		if err != nil {
			return nil, err
		}
		r.Status, err = models.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		results = append(results, r)
	}

	return results, rows.Err()
}

// Count returns the number of check results matching the given options.
func (s *ResultStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("check_results")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByRun(runID string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if runID == "" {
			return b
		}
		return b.Where(sq.Eq{"run_id": runID})
	}
}

func ByCategory(categories ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(categories) == 0 {
			return b
		}
		return b.Where(sq.Eq{"category": categories})
	}
}

func ByStatus(statuses ...models.Status) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		return b.Where(sq.Eq{"status": values})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}
