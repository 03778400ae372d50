// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/invoices/internal/cache"
	"github.com/deppfellow/invoices/internal/lib/job"
	"github.com/deppfellow/invoices/internal/repository"
	"github.com/deppfellow/invoices/internal/server"
)

type Services struct {
	Auth    *AuthService
	Invoice *InvoiceService
	Job     *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	// Notifications are only sent when an email provider is configured.
	var notifier invoiceNotifier
	if s.Config.Integration.ResendAPIKey != "" && s.Job != nil {
		notifier = s.Job
	}

	views := cache.NewViewCache(s.Redis, s.Logger)

	return &Services{
		Auth:    authService,
		Invoice: NewInvoiceService(repos.Invoice, views, notifier, s.Logger),
		Job:     s.Job,
	}, nil
}
