// Package handler is the first layer after the router.
//
// It binds and validates requests using the validation package, calls the
// service layer and writes the response.
package handler

import (
	"github.com/deppfellow/invoices/internal/server"
	"github.com/deppfellow/invoices/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Invoice *InvoiceHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Invoice: NewInvoiceHandler(s, services.Invoice),
	}
}
