package report

// Run queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, target, started_at)
		VALUES (?, ?, ?)`

	queryFinishRun = `
		UPDATE runs SET finished_at = ?
		WHERE id = ?`

	queryGetRun = `
		SELECT id, target, started_at, finished_at
		FROM runs WHERE id = ?`

	queryListRuns = `
		SELECT id, target, started_at, finished_at
		FROM runs ORDER BY started_at DESC`
)

// Check result queries
const (
	queryInsertResult = `
		INSERT INTO check_results (run_id, name, category, status, detail, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?)`
)
