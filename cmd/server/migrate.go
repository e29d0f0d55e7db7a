package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lease-reconciliation-service/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 0 {
				return fmt.Errorf("--steps must not be negative")
			}

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return database.Migrate(cmd.Context(), cfg, args[0], steps, logger)
		},
	}
	cmd.Flags().Int("steps", 0, "Number of migration steps (0 means all)")
	return cmd
}
