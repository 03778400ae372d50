// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
package job

import (
	"context"

	"github.com/deppfellow/invoices/internal/config"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// InvoiceLoader reads what the invoice-created email needs.
type InvoiceLoader interface {
	GetInvoiceNotification(ctx context.Context, id string) (*model.InvoiceNotification, error)
}

type invoiceMailer interface {
	SendInvoiceCreatedEmail(ctx context.Context, n *model.InvoiceNotification) error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger

	invoices InvoiceLoader
	mailer   invoiceMailer
}

// NewJobService creates a JobService configured to use Redis from cfg.
// Queue weights give "critical" tasks the largest share of workers.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisAddr := cfg.Redis.Address

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr: redisAddr,
	})

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// Start registers task handlers and starts the worker server in the
// background. InitHandlers must be called first.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskInvoiceCreated, j.handleInvoiceCreatedTask)

	j.logger.Info().Msg("starting background job server")

	return j.server.Start(mux)
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
