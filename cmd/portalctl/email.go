package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/visionafrica/debate-portal/pkg/mailer"
)

func newTestEmailCmd(e *env) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send a test message through the configured SMTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := mailer.NewSMTPSender(e.cfg.SMTP)
			if err != nil {
				return err
			}
			if to == "" {
				to = e.cfg.SMTP.User
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.SMTP.Timeout+5*time.Second)
			defer cancel()

			err = sender.Send(ctx, mailer.Message{
				To:       to,
				Subject:  "SMTP test",
				HTMLBody: "<p>The debate portal can send email.</p>",
			})
			if err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "test email sent to %s\n", to)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient (defaults to SMTP_USER)")
	return cmd
}
