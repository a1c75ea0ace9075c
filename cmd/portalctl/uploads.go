package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visionafrica/debate-portal/internal/app"
)

func newFixPathsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-paths",
		Short: "Rewrite stored logo and receipt paths to the uploads/<file> form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				n, err := c.Maintenance.NormalizeFilePaths(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "normalized %d registration(s)\n", n)
				return nil
			})
		},
	}
}

func newSweepUploadsCmd(e *env) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep-uploads",
		Short: "Delete uploaded files no registration references",
		Long: `Delete files in the uploads directory that no registration references.
Files younger than UPLOADS_ORPHAN_GRACE are skipped so in-flight
registrations keep their uploads.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				res, err := c.Maintenance.SweepOrphanUploads(ctx, dryRun)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, name := range res.Orphans {
					fmt.Fprintln(out, name)
				}
				if dryRun {
					fmt.Fprintf(out, "%d orphan(s) found, nothing deleted\n", len(res.Orphans))
				} else {
					fmt.Fprintf(out, "%d orphan(s) deleted\n", res.Deleted)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphans without deleting them")
	return cmd
}
