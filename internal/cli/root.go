// Package cli holds the invoices command line: serve the HTTP API, run
// database migrations and preview email templates.
package cli

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invoices",
		Short:         "Invoice records service",
		Long:          "invoices serves the invoice dashboard API backed by PostgreSQL and Redis.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newEmailPreviewCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}
