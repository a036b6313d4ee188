package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tangent-app/tangent/internal/config"
	"github.com/tangent-app/tangent/internal/logging"
	"github.com/tangent-app/tangent/internal/migrate"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	var target int64
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or down to --to",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := runner()
			if err != nil {
				return err
			}
			return r.Down(cmd.Context(), target)
		},
	}
	down.Flags().Int64Var(&target, "to", 0, "target version")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := runner()
				if err != nil {
					return err
				}
				return r.Up(cmd.Context())
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := runner()
				if err != nil {
					return err
				}
				return r.Status(cmd.Context())
			},
		},
	)
	return cmd
}

func runner() (migrate.Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return migrate.Runner{}, fmt.Errorf("load config: %w", err)
	}
	return migrate.New(cfg.DatabaseURL, logging.New(cfg.AppName, cfg.LogLevel))
}
