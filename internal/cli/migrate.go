package cli

import (
	"github.com/deppfellow/invoices/internal/config"
	"github.com/deppfellow/invoices/internal/database"
	"github.com/deppfellow/invoices/internal/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			log := logger.NewLoggerWithService(cfg.Observability, nil)
			return database.Migrate(cmd.Context(), &log, cfg)
		},
	}
}
