package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/app"
	"github.com/visionafrica/debate-portal/pkg/config"
	"github.com/visionafrica/debate-portal/pkg/logger"
)

// env is loaded once per invocation by the root PersistentPreRunE.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Operational tasks for the debate registration portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			e.cfg, e.logger = cfg, logr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	root.AddCommand(
		newMigrateCmd(e),
		newCreateAdminCmd(e),
		newFixPathsCmd(e),
		newSweepUploadsCmd(e),
		newCheckDBCmd(e),
		newTestEmailCmd(e),
	)
	return root
}

// withContainer builds the full service graph for the duration of fn.
func (e *env) withContainer(ctx context.Context, fn func(context.Context, *app.Container) error) error {
	c, err := app.New(e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck
	return fn(ctx, c)
}
