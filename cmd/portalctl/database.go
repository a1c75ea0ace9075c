package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/visionafrica/debate-portal/pkg/database"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgres(e.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close() //nolint:errcheck

			if err := database.Migrate(db, e.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newCheckDBCmd(e *env) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check-db",
		Short: "Verify the database is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgres(e.cfg.Database)
			if err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			defer db.Close() //nolint:errcheck

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var now time.Time
			if err := db.GetContext(ctx, &now, "SELECT NOW()"); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database ok (server time %s)\n", now.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "query timeout")
	return cmd
}
