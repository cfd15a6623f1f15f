package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackproof/stackproof/internal/report"
	"github.com/stackproof/stackproof/internal/report/migrations"
)

var (
	exportRunID string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a recorded run to a spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		db, err := report.NewDB(cfg.Report.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrations.Run(ctx, db); err != nil {
			return err
		}
		store := report.NewStore(db)

		runID := exportRunID
		if runID == "" {
			runs, err := store.Runs().List(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return fmt.Errorf("no runs recorded in %q", cfg.Report.Path)
			}
			runID = runs[0].ID
		}

		if err := report.ExportXLSX(ctx, store, runID, exportOut); err != nil {
			return err
		}
		fmt.Printf("exported run %s to %s\n", runID, exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run ID to export (default: most recent run)")
	exportCmd.Flags().StringVar(&exportOut, "out", "stackproof.xlsx", "output spreadsheet path")
}
