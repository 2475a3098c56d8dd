package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the ticket table of the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if err := app.Migrate(cmd.Context(), cfg, logger); err != nil {
			return err
		}
		logger.Info("migration complete", zap.String("store", cfg.Store.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
