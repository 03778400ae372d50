package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/invoices/internal/model"
	"github.com/shopspring/decimal"
)

// SendInvoiceCreatedEmail tells the customer a new invoice was issued.
func (c *Client) SendInvoiceCreatedEmail(ctx context.Context, n *model.InvoiceNotification) error {
	data := InvoiceCreatedData(n)

	return c.SendEmail(
		ctx,
		n.CustomerEmail,
		fmt.Sprintf("New invoice for $%s", data["Amount"]),
		TemplateInvoiceCreated,
		data,
	)
}

// InvoiceCreatedData is the template data for TemplateInvoiceCreated.
// The amount is rendered in dollars.
func InvoiceCreatedData(n *model.InvoiceNotification) map[string]string {
	return map[string]string{
		"CustomerName": n.CustomerName,
		"InvoiceID":    n.InvoiceID,
		"Amount":       decimal.New(n.Amount, -2).StringFixed(2),
		"Status":       string(n.Status),
		"Date":         n.Date,
	}
}
