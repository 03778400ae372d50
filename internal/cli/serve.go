package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/invoices/internal/config"
	"github.com/deppfellow/invoices/internal/database"
	"github.com/deppfellow/invoices/internal/handler"
	"github.com/deppfellow/invoices/internal/logger"
	"github.com/deppfellow/invoices/internal/repository"
	"github.com/deppfellow/invoices/internal/router"
	"github.com/deppfellow/invoices/internal/server"
	"github.com/deppfellow/invoices/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the background worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			loggerService := logger.NewLoggerService(cfg.Observability)
			defer loggerService.Shutdown()

			log := logger.NewLoggerWithService(cfg.Observability, loggerService)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if migrate {
				if err := database.Migrate(ctx, &log, cfg); err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
			}

			return serve(ctx, cfg, &log, loggerService)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) error {
	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		return err
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		return fmt.Errorf("failed to create services: %w", err)
	}

	srv.Job.InitHandlers(cfg, log, repos.Invoice)
	if err := srv.Job.Start(); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}

	r := router.NewRouter(srv, handler.NewHandlers(srv, services))
	srv.SetupHTTPServer(r)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
