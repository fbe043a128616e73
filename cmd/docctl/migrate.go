package main

import (
	"github.com/spf13/cobra"

	"docvault/internal/app"
	"docvault/internal/config"
)

func newMigrateCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the documents and tags schema if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := app.OpenDatabase(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"driver": cfg.Database.Driver,
				"status": "migrated",
			})
		},
	}
}
