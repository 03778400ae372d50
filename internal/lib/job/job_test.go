package job

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/deppfellow/invoices/internal/model"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceID = "d6e15727-9fe1-4961-8c5b-ea44a9bd81aa"

type fakeLoader struct {
	notification *model.InvoiceNotification
	err          error
}

func (f *fakeLoader) GetInvoiceNotification(_ context.Context, id string) (*model.InvoiceNotification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.notification, nil
}

type fakeMailer struct {
	sent []*model.InvoiceNotification
	err  error
}

func (f *fakeMailer) SendInvoiceCreatedEmail(_ context.Context, n *model.InvoiceNotification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func newTestJobService(loader InvoiceLoader, mailer invoiceMailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger, invoices: loader, mailer: mailer}
}

func TestNewInvoiceCreatedTask(t *testing.T) {
	task, err := NewInvoiceCreatedTask(invoiceID)
	require.NoError(t, err)

	assert.Equal(t, TaskInvoiceCreated, task.Type())

	var p InvoiceCreatedPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, invoiceID, p.InvoiceID)
}

func TestHandleInvoiceCreatedTask(t *testing.T) {
	ctx := context.Background()
	notification := &model.InvoiceNotification{InvoiceID: invoiceID, CustomerEmail: "lee@robinson.com"}

	t.Run("sends the email", func(t *testing.T) {
		mailer := &fakeMailer{}
		j := newTestJobService(&fakeLoader{notification: notification}, mailer)
		task, err := NewInvoiceCreatedTask(invoiceID)
		require.NoError(t, err)

		require.NoError(t, j.handleInvoiceCreatedTask(ctx, task))
		assert.Equal(t, []*model.InvoiceNotification{notification}, mailer.sent)
	})

	t.Run("deleted invoice is skipped", func(t *testing.T) {
		mailer := &fakeMailer{}
		j := newTestJobService(&fakeLoader{err: fmt.Errorf("load: %w", pgx.ErrNoRows)}, mailer)
		task, err := NewInvoiceCreatedTask(invoiceID)
		require.NoError(t, err)

		assert.NoError(t, j.handleInvoiceCreatedTask(ctx, task))
		assert.Empty(t, mailer.sent)
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		j := newTestJobService(&fakeLoader{}, &fakeMailer{})

		err := j.handleInvoiceCreatedTask(ctx, asynq.NewTask(TaskInvoiceCreated, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)

		task, err := NewInvoiceCreatedTask("not-a-uuid")
		require.NoError(t, err)
		assert.ErrorIs(t, j.handleInvoiceCreatedTask(ctx, task), asynq.SkipRetry)
	})

	t.Run("mail failure is returned", func(t *testing.T) {
		j := newTestJobService(&fakeLoader{notification: notification}, &fakeMailer{err: errors.New("provider down")})
		task, err := NewInvoiceCreatedTask(invoiceID)
		require.NoError(t, err)

		assert.ErrorContains(t, j.handleInvoiceCreatedTask(ctx, task), "provider down")
	})
}

func TestAsynqLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	newAsynqLogger(&logger).Warn("queue ", "default", " paused")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "asynq", entry["component"])
	assert.Equal(t, "queue default paused", entry["message"])
}
