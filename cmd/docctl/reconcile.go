package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docvault/internal/app"
	"docvault/internal/config"
	"docvault/internal/service"
)

// defaultMinAge leaves room for uploads whose metadata row is still being written.
const defaultMinAge = time.Hour

func newReconcileCmd(cfg *config.AppConfig) *cobra.Command {
	var opts service.ReconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Remove stored objects that no document references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.MinAge < 0 {
				return fmt.Errorf("--min-age must not be negative, got %s", opts.MinAge)
			}

			logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Service.ReconcileOrphans(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report orphans without deleting them")
	cmd.Flags().DurationVar(&opts.MinAge, "min-age", defaultMinAge, "skip objects modified more recently than this; survivors are re-checked just before deletion")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "only scan object keys with this prefix")
	return cmd
}
