package main

import (
	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/eventdesk/internal/database"
	"github.com/Shivanand-hulikatti/eventdesk/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		pool, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		logger := log.WithComponent("database")
		logger.Info().Msg("schema applied")
		return nil
	},
}
