package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TaskInvoiceCreated is sent once per stored invoice.
const TaskInvoiceCreated = "invoice:created"

type InvoiceCreatedPayload struct {
	InvoiceID string `json:"invoice_id"`
}

// NewInvoiceCreatedTask builds the notification task for invoiceID.
// A failed delivery is not retried.
func NewInvoiceCreatedTask(invoiceID string) (*asynq.Task, error) {
	payload, err := json.Marshal(InvoiceCreatedPayload{InvoiceID: invoiceID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskInvoiceCreated,
		payload,
		asynq.MaxRetry(0),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueInvoiceCreated queues the invoice-created notification.
func (j *JobService) EnqueueInvoiceCreated(ctx context.Context, invoiceID string) error {
	task, err := NewInvoiceCreatedTask(invoiceID)
	if err != nil {
		return fmt.Errorf("failed to build %s task: %w", TaskInvoiceCreated, err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", TaskInvoiceCreated, err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("invoice_id", invoiceID).
		Msg("enqueued invoice notification")
	return nil
}
