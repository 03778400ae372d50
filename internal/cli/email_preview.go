package cli

import (
	"fmt"

	"github.com/deppfellow/invoices/internal/lib/email"
	"github.com/spf13/cobra"
)

func newEmailPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email-preview <template>",
		Short: "Render an email template with sample data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := email.Preview(email.Template(args[0]))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
}
