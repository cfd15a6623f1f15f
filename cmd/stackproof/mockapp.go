package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackproof/stackproof/internal/mockapp"
)

var (
	mockAppAddr      string
	mockAppRecipient string
)

var mockAppCmd = &cobra.Command{
	Use:   "mock-app",
	Short: "Serve an in-memory stand-in for the application under test",
	Long: `Serve an in-memory implementation of the application API.

Useful for developing checks without a deployed environment: the mock
accepts the same bearer tokens, stores objects in memory, and logs the
notification it would send on every upload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := zap.S().Named("mockapp")
		server := mockapp.New(mockapp.Config{
			AuthSecret:      cfg.App.AuthSecret,
			NotifyRecipient: mockAppRecipient,
			Notify: func(n mockapp.Notification) {
				log.Infow("notification", "recipient", n.Recipient, "subject", n.Subject)
			},
		})

		log.Infow("serving", "addr", mockAppAddr)
		return server.Run(mockAppAddr)
	},
}

func init() {
	mockAppCmd.Flags().StringVar(&mockAppAddr, "addr", ":8080", "listen address")
	mockAppCmd.Flags().StringVar(&mockAppRecipient, "recipient", "qa@example.com", "recipient recorded on upload notifications")
}
