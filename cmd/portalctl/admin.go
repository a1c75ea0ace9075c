package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visionafrica/debate-portal/internal/app"
	"github.com/visionafrica/debate-portal/internal/models"
)

func newCreateAdminCmd(e *env) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account if the username is free",
		Long: `Create an admin account. Username and password default to
ADMIN_USERNAME (or ADMIN_EMAIL) and ADMIN_PASSWORD. An existing account
with the same username is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = e.cfg.Admin.Username
			}
			if password == "" {
				password = e.cfg.Admin.Password
			}
			if username == "" || password == "" {
				return errors.New("username and password are required (flags or ADMIN_USERNAME/ADMIN_PASSWORD)")
			}

			return e.withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				created, err := c.Auth.ProvisionAdmin(ctx, models.ProvisionAdminRequest{Username: username, Password: password})
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "admin %q created\n", username)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", username)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")
	return cmd
}
