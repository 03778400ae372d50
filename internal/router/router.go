// Package router builds the Echo instance: global middleware, the system
// routes and the authenticated dashboard routes.
package router

import (
	"net/http"

	"github.com/deppfellow/invoices/internal/handler"
	"github.com/deppfellow/invoices/internal/middleware"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	dashboard := router.Group("/dashboard", middlewares.Auth.RequireAuth)
	registerInvoiceRoutes(dashboard, h)

	return router
}

func registerInvoiceRoutes(g *echo.Group, h *handler.Handlers) {
	invoices := g.Group("/invoices")

	invoices.GET("", handler.Handle(h.Invoice.Handler, h.Invoice.ListInvoices, http.StatusOK, &model.ListInvoicesPayload{}))
	invoices.POST("", handler.HandleAction(h.Invoice.Handler, h.Invoice.CreateInvoice, &model.CreateInvoicePayload{}))

	update := handler.HandleAction(h.Invoice.Handler, h.Invoice.UpdateInvoice, &model.UpdateInvoicePayload{})
	invoices.PUT("/:id", update)
	// HTML forms can only POST.
	invoices.POST("/:id", update)

	invoices.DELETE("/:id", handler.HandleNoContent(h.Invoice.Handler, h.Invoice.DeleteInvoice, http.StatusNoContent, &model.DeleteInvoicePayload{}))
}
