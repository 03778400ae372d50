package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/invoices/internal/config"
	"github.com/deppfellow/invoices/internal/errs"
	"github.com/deppfellow/invoices/internal/handler"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/server"
	"github.com/deppfellow/invoices/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopInvoices struct{}

func (nopInvoices) Create(context.Context, *model.FormState, model.InvoiceForm) service.ActionResult {
	return service.ActionResult{}
}
func (nopInvoices) Update(context.Context, string, model.InvoiceForm) (string, error) { return "", nil }
func (nopInvoices) Delete(context.Context, string)                                    {}
func (nopInvoices) List(context.Context, string, int) (*model.InvoicePage, error) {
	return &model.InvoicePage{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Server: config.ServerConfig{CORSAllowedOrigins: []string{"*"}, RateLimit: 100},
		},
		Logger: &logger,
	}
	h := &handler.Handlers{
		Health:  handler.NewHealthHandler(s),
		OpenAPI: handler.NewOpenAPIHandler(s),
		Invoice: handler.NewInvoiceHandler(s, nopInvoices{}),
	}
	return NewRouter(s, h)
}

func TestRouter(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
		{"list requires a session", http.MethodGet, "/dashboard/invoices", http.StatusUnauthorized},
		{"create requires a session", http.MethodPost, "/dashboard/invoices", http.StatusUnauthorized},
		{"delete requires a session", http.MethodDelete, "/dashboard/invoices/d6e15727-9fe1-4961-8c5b-ea44a9bd81aa", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
		})
	}
}
