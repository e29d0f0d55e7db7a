package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/config"
	"lease-reconciliation-service/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "lease-reconciliation",
		Short:        "Lease and rent reconciliation service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the logger shared by every
// command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("error building logger: %w", err)
	}
	return cfg, logger, nil
}
