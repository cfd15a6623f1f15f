package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/stackproof/stackproof/internal/models"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// ExportXLSX writes the results of one run into a spreadsheet at path.
// The Results sheet lists every check, the Summary sheet aggregates
// outcomes per category.
func ExportXLSX(ctx context.Context, store *Store, runID, path string) error {
	run, err := store.Runs().Get(ctx, runID)
	if err != nil {
		return err
	}
	results, err := store.Results().List(ctx, ByRun(runID))
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", resultsSheet)
	if err := writeResultsSheet(f, run, results); err != nil {
		return err
	}
	if err := writeSummarySheet(f, results); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %q: %w", path, err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, run *models.Run, results []models.CheckResult) error {
	header := []any{"Run", "Category", "Check", "Status", "Detail", "Elapsed (ms)"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range results {
		row := []any{
			run.ID,
			r.Category,
			r.Name,
			string(r.Status),
			r.Detail,
			r.Elapsed.Milliseconds(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(resultsSheet, "A", "F", 24)
}

func writeSummarySheet(f *excelize.File, results []models.CheckResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	type tally struct {
		pass, fail, skip int
	}
	tallies := map[string]*tally{}
	var categories []string
	for _, r := range results {
		t, ok := tallies[r.Category]
		if !ok {
			t = &tally{}
			tallies[r.Category] = t
			categories = append(categories, r.Category)
		}
		switch r.Status {
		case models.StatusPass:
			t.pass++
		case models.StatusFail:
			t.fail++
		case models.StatusSkip:
			t.skip++
		}
	}

	header := []any{"Category", "Pass", "Fail", "Skip"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}
	for i, category := range categories {
		t := tallies[category]
		row := []any{category, t.pass, t.fail, t.skip}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "D", 18)
}
