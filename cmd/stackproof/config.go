package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the suite configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and report whether it is usable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		color.Green("configuration ok")
		fmt.Printf("  region:          %s\n", cfg.Cloud.Region)
		fmt.Printf("  resource prefix: %s\n", cfg.Cloud.ResourcePrefix)
		fmt.Printf("  app url:         %s\n", orUnset(cfg.App.BaseURL))
		fmt.Printf("  mailbox url:     %s\n", orUnset(cfg.Mailbox.BaseURL))
		fmt.Printf("  report path:     %s\n", cfg.Report.Path)
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
