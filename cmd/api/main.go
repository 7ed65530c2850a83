package main

import (
	"fmt"
	"os"

	"github.com/sangkips/billing-api/internal/config"
	"github.com/sangkips/billing-api/internal/logger"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "billing-api",
		Short: "Quotes, purchase orders and invoices API",
		Long: `billing-api serves the back office of a small service business:
clients, a service catalog, quotes, purchase orders and invoices
with PDF rendering and email delivery.

Run without a subcommand to start the HTTP server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newTokenCmd())
	return root
}

// loadConfig reads the configuration and sets up the global logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return nil, fmt.Errorf("invalid log configuration: %w", err)
	}
	return cfg, nil
}
