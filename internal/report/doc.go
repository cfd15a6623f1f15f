// Package report implements the persistence layer for validation runs.
//
// Results are stored in DuckDB so that runs can be compared over time and
// exported for review. The package follows a facade layout:
//
//	┌──────────────────────────────────────────────┐
//	│                Store (facade)                │
//	├───────────────────────┬──────────────────────┤
//	│        RunStore       │     ResultStore      │
//	│           ▼           │          ▼           │
//	│          runs         │    check_results     │
//	└───────────────────────┴──────────────────────┘
//
// Tables created by local migrations (internal/report/migrations):
//
//	┌────────────────────┬──────────────────────────────────────────┐
//	│  Table             │  Purpose                                 │
//	├────────────────────┼──────────────────────────────────────────┤
//	│  runs              │  One row per suite execution             │
//	│  check_results     │  One row per check outcome within a run  │
//	│  schema_migrations │  Migration version tracking              │
//	└────────────────────┴──────────────────────────────────────────┘
//
// # List Options
//
// ResultStore.List uses the functional options pattern. Each ListOption
// modifies the SQL query builder, and options compose:
//
//	results, err := store.Results().List(ctx,
//	    report.ByRun(runID),
//	    report.ByCategory("storage"),
//	    report.ByStatus(models.StatusFail),
//	    report.WithLimit(50),
//	)
//
// # Export
//
// ExportXLSX renders a run into a spreadsheet with a per-check results
// sheet and a per-category summary sheet.
package report
