package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stackproof/stackproof/internal/appapi"
	"github.com/stackproof/stackproof/internal/checks"
	"github.com/stackproof/stackproof/internal/cloud"
	"github.com/stackproof/stackproof/internal/config"
	"github.com/stackproof/stackproof/internal/mailbox"
	"github.com/stackproof/stackproof/internal/report"
	"github.com/stackproof/stackproof/internal/report/migrations"
)

var (
	runTarget  string
	runWorkers int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all checks against the configured target and record the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
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

		deps, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}

		runner := checks.NewRunner(store, deps, runWorkers)
		summary, err := runner.Run(ctx, runTarget, checks.All())
		if err != nil {
			return err
		}

		printSummary(summary)
		if !summary.Ok() {
			return fmt.Errorf("%d of %d checks failed", summary.Failed, summary.Total)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runTarget, "target", "default", "name of the environment under test, recorded with the run")
	runCmd.Flags().IntVar(&runWorkers, "workers", 4, "number of checks to run concurrently")
}

// buildDeps wires the clients the checks need. Clients whose target is
// not configured stay nil so the corresponding checks skip.
func buildDeps(ctx context.Context, cfg *config.Configuration) (*checks.Deps, error) {
	deps := &checks.Deps{Config: cfg}

	if cfg.Cloud.Region != "" {
		awsCfg, err := cloud.LoadAWSConfig(ctx, cfg.Cloud.Region, cfg.Cloud.Profile)
		if err != nil {
			return nil, err
		}
		clients := cloud.NewClients(awsCfg)
		deps.Compute = cloud.NewCompute(clients.EC2)
		deps.Storage = cloud.NewStorage(clients.S3)
		deps.Database = cloud.NewDatabase(clients.RDS, clients.DynamoDB)
		deps.Messaging = cloud.NewMessaging(clients.SNS, clients.SQS)
		deps.Functions = cloud.NewFunctions(clients.Lambda)
		deps.Identity = cloud.NewIdentity(clients.IAM)
		deps.Audit = cloud.NewAudit(clients.Logs, clients.CloudTrail)
	}

	if cfg.App.BaseURL != "" {
		signer := appapi.NewTokenSigner(cfg.App.AuthSecret, cfg.App.Issuer)
		token, err := signer.Sign("stackproof", appapi.DefaultTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to sign app token: %w", err)
		}
		deps.App = appapi.NewClient(cfg.App.BaseURL, token, appapi.WithTimeout(cfg.App.Timeout))
	}

	if cfg.Mailbox.BaseURL != "" {
		deps.Mail = mailbox.NewClient(mailbox.Config{
			BaseURL:  cfg.Mailbox.BaseURL,
			APIToken: cfg.Mailbox.APIToken,
			InboxID:  cfg.Mailbox.InboxID,
			Attempts: cfg.Mailbox.Attempts,
			Interval: cfg.Mailbox.Interval,
		})
	}

	return deps, nil
}

func printSummary(summary *checks.Summary) {
	fmt.Printf("run %s: %d checks\n", summary.RunID, summary.Total)
	color.Green("  passed:  %d", summary.Passed)
	if summary.Failed > 0 {
		color.Red("  failed:  %d", summary.Failed)
	} else {
		fmt.Printf("  failed:  %d\n", summary.Failed)
	}
	if summary.Skipped > 0 {
		color.Yellow("  skipped: %d", summary.Skipped)
	} else {
		fmt.Printf("  skipped: %d\n", summary.Skipped)
	}
}
