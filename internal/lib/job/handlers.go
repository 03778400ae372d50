package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/invoices/internal/config"
	"github.com/deppfellow/invoices/internal/lib/email"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// InitHandlers wires the dependencies the task handlers use.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger, invoices InvoiceLoader) {
	j.invoices = invoices
	j.mailer = email.NewClient(cfg, logger)
}

func (j *JobService) handleInvoiceCreatedTask(ctx context.Context, t *asynq.Task) error {
	var p InvoiceCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal invoice created payload: %w: %w", err, asynq.SkipRetry)
	}

	if _, err := uuid.Parse(p.InvoiceID); err != nil {
		return fmt.Errorf("invalid invoice id %q: %w: %w", p.InvoiceID, err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskInvoiceCreated).
		Str("invoice_id", p.InvoiceID).
		Logger()

	log.Info().Msg("processing invoice created task")

	n, err := j.invoices.GetInvoiceNotification(ctx, p.InvoiceID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Deleted before the worker got to it.
		log.Warn().Msg("invoice no longer exists, skipping notification")
		return nil
	}
	if err != nil {
		return err
	}

	if err := j.mailer.SendInvoiceCreatedEmail(ctx, n); err != nil {
		log.Error().Err(err).Msg("failed to send invoice created email")
		return err
	}

	log.Info().Str("to", n.CustomerEmail).Msg("sent invoice created email")
	return nil
}
