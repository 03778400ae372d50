package email

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/invoices/internal/model"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func newTestClient(s sender) *Client {
	logger := zerolog.Nop()
	return &Client{sender: s, from: defaultFrom, logger: &logger}
}

var notification = &model.InvoiceNotification{
	InvoiceID:     "d6e15727-9fe1-4961-8c5b-ea44a9bd81aa",
	Amount:        12550,
	Status:        model.InvoiceStatusPending,
	Date:          "2024-03-09",
	CustomerName:  "Delba de Oliveira",
	CustomerEmail: "delba@oliveira.com",
}

func TestSendInvoiceCreatedEmail(t *testing.T) {
	s := &fakeSender{}
	c := newTestClient(s)

	require.NoError(t, c.SendInvoiceCreatedEmail(context.Background(), notification))

	require.Len(t, s.sent, 1)
	req := s.sent[0]
	assert.Equal(t, []string{"delba@oliveira.com"}, req.To)
	assert.Equal(t, defaultFrom, req.From)
	assert.Equal(t, "New invoice for $125.50", req.Subject)
	assert.Contains(t, req.Html, "Hi Delba de Oliveira,")
	assert.Contains(t, req.Html, "$125.50")
}

func TestSendEmail_ProviderError(t *testing.T) {
	c := newTestClient(&fakeSender{err: errors.New("rate limited")})

	err := c.SendInvoiceCreatedEmail(context.Background(), notification)
	assert.ErrorContains(t, err, "rate limited")
}

func TestInvoiceCreatedData(t *testing.T) {
	data := InvoiceCreatedData(&model.InvoiceNotification{Amount: 5})
	assert.Equal(t, "0.05", data["Amount"])
}

func TestPreview(t *testing.T) {
	for name := range PreviewData {
		html, err := Preview(name)
		require.NoError(t, err, name)
		assert.Contains(t, html, "Delba de Oliveira")
	}

	_, err := Preview("missing")
	assert.Error(t, err)
}

func TestRender_MissingTemplate(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}
