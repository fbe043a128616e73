package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docvault/internal/config"
	"docvault/internal/logging"
)

func newRootCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docctl",
		Short:         "Operational commands for the docvault document store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = version

	cmd.AddCommand(
		newMigrateCmd(cfg),
		newReconcileCmd(cfg),
	)
	return cmd
}

// newLogger logs to w in console format so stdout stays machine readable.
func newLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load log timezone %q: %w", cfg.Timezone, err)
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return logging.NewWithWriter(w, level, "console", loc), nil
}
