package handler

import (
	"context"

	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/server"
	"github.com/deppfellow/invoices/internal/service"
	"github.com/labstack/echo/v4"
)

type invoiceService interface {
	Create(ctx context.Context, prev *model.FormState, form model.InvoiceForm) service.ActionResult
	Update(ctx context.Context, id string, form model.InvoiceForm) (string, error)
	Delete(ctx context.Context, id string)
	List(ctx context.Context, query string, page int) (*model.InvoicePage, error)
}

type InvoiceHandler struct {
	Handler
	invoices invoiceService
}

func NewInvoiceHandler(s *server.Server, invoices invoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		Handler:  NewHandler(s),
		invoices: invoices,
	}
}

func (h *InvoiceHandler) CreateInvoice(c echo.Context, req *model.CreateInvoicePayload) (service.ActionResult, error) {
	return h.invoices.Create(c.Request().Context(), nil, req.Form()), nil
}

func (h *InvoiceHandler) UpdateInvoice(c echo.Context, req *model.UpdateInvoicePayload) (service.ActionResult, error) {
	location, err := h.invoices.Update(c.Request().Context(), req.ID, req.Form())
	if err != nil {
		return service.ActionResult{}, err
	}
	return service.ActionResult{Redirect: location}, nil
}

func (h *InvoiceHandler) DeleteInvoice(c echo.Context, req *model.DeleteInvoicePayload) error {
	h.invoices.Delete(c.Request().Context(), req.ID)
	return nil
}

func (h *InvoiceHandler) ListInvoices(c echo.Context, req *model.ListInvoicesPayload) (*model.InvoicePage, error) {
	return h.invoices.List(c.Request().Context(), req.Query, req.Page)
}
