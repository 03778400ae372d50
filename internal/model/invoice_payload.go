package model

import (
	"github.com/go-playground/validator/v10"
)

// CreateInvoicePayload is bound from the create form.
type CreateInvoicePayload struct {
	CustomerID string `form:"customerId" json:"customerId"`
	Amount     string `form:"amount" json:"amount"`
	Status     string `form:"status" json:"status"`
}

// Validate accepts every submission: field errors for a create are
// reported back through FormState, not as a request error.
func (p *CreateInvoicePayload) Validate() error {
	return nil
}

func (p *CreateInvoicePayload) Form() InvoiceForm {
	return InvoiceForm{CustomerID: p.CustomerID, Amount: p.Amount, Status: p.Status}
}

// UpdateInvoicePayload is bound from the edit form and the :id path param.
type UpdateInvoicePayload struct {
	ID         string `param:"id" json:"-" validate:"required"`
	CustomerID string `form:"customerId" json:"customerId"`
	Amount     string `form:"amount" json:"amount"`
	Status     string `form:"status" json:"status"`
}

func (p *UpdateInvoicePayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

func (p *UpdateInvoicePayload) Form() InvoiceForm {
	return InvoiceForm{CustomerID: p.CustomerID, Amount: p.Amount, Status: p.Status}
}

// DeleteInvoicePayload carries the :id path param.
type DeleteInvoicePayload struct {
	ID string `param:"id" validate:"required"`
}

func (p *DeleteInvoicePayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// ListInvoicesPayload is bound from the list view query string.
type ListInvoicesPayload struct {
	Query string `query:"query" validate:"max=255"`
	Page  int    `query:"page" validate:"gte=0"`
}

func (p *ListInvoicesPayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
