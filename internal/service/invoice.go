package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/invoices/internal/cache"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/sqlerr"
	"github.com/deppfellow/invoices/internal/validation"
	"github.com/rs/zerolog"
)

// InvoicesPath is the list view every invoice mutation invalidates.
const InvoicesPath = "/dashboard/invoices"

type invoiceStore interface {
	InsertInvoice(ctx context.Context, fields model.InvoiceFields, date string) (string, error)
	UpdateInvoice(ctx context.Context, id string, fields model.InvoiceFields) error
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context, query string, page int) ([]model.InvoiceListItem, error)
}

type viewCache interface {
	Get(ctx context.Context, path, variant string, dst any) error
	Generation(ctx context.Context, path string) (int64, error)
	Set(ctx context.Context, path, variant string, generation int64, value any) error
	RevalidatePath(ctx context.Context, path string) error
}

type invoiceNotifier interface {
	EnqueueInvoiceCreated(ctx context.Context, invoiceID string) error
}

// ActionResult is the outcome of a form action: either a state to
// redisplay the form with, or a location to redirect to.
type ActionResult struct {
	State    *model.FormState
	Redirect string
}

type InvoiceService struct {
	store    invoiceStore
	views    viewCache
	notifier invoiceNotifier
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewInvoiceService(store invoiceStore, views viewCache, notifier invoiceNotifier, logger *zerolog.Logger) *InvoiceService {
	return &InvoiceService{
		store:    store,
		views:    views,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates the form and stores a new invoice dated today (UTC).
//
// An invalid form comes back as state and nothing is stored. Otherwise the
// invoices view is invalidated and the result redirects to it, filtered by
// the new invoice's date, even if storing failed.
func (s *InvoiceService) Create(ctx context.Context, _ *model.FormState, form model.InvoiceForm) ActionResult {
	fields, err := model.ParseInvoiceForm(form)
	if err != nil {
		var fieldErrors validation.CustomValidationErrors
		errors.As(err, &fieldErrors)
		return ActionResult{State: model.NewFormState(form, fieldErrors, model.MsgCreateFailed)}
	}

	date := model.FormatDate(s.now())
	log := s.log(ctx)

	id, err := s.store.InsertInvoice(ctx, fields, date)
	if err != nil {
		log.Error().Err(err).Str("code", string(sqlerr.ErrCode(err))).Msg("failed to create invoice")
	}

	s.revalidate(ctx)

	if id != "" && s.notifier != nil {
		if err := s.notifier.EnqueueInvoiceCreated(ctx, id); err != nil {
			log.Error().Err(err).Str("invoice_id", id).Msg("failed to enqueue invoice notification")
		}
	}

	return ActionResult{Redirect: redirectLocation(date)}
}

// Update validates the form and overwrites the invoice's customer, amount
// and status. Unlike Create, an invalid form is returned as an error
// carrying the field messages. An unknown id is not an error.
func (s *InvoiceService) Update(ctx context.Context, id string, form model.InvoiceForm) (string, error) {
	fields, err := model.ParseInvoiceForm(form)
	if err != nil {
		return "", validation.NewFormError(err)
	}

	if err := s.store.UpdateInvoice(ctx, id, fields); err != nil {
		s.log(ctx).Error().Err(err).Str("invoice_id", id).Str("code", string(sqlerr.ErrCode(err))).
			Msg("failed to update invoice")
	}

	s.revalidate(ctx)

	return redirectLocation(model.FormatDate(s.now())), nil
}

// Delete removes the invoice and invalidates the invoices view.
func (s *InvoiceService) Delete(ctx context.Context, id string) {
	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		s.log(ctx).Error().Err(err).Str("invoice_id", id).Str("code", string(sqlerr.ErrCode(err))).
			Msg("failed to delete invoice")
	}

	s.revalidate(ctx)
}

// List returns a page of the invoices view, served from the view cache
// when possible. A page read from the database is cached only if no
// mutation revalidated the view while it was being read.
func (s *InvoiceService) List(ctx context.Context, query string, page int) (*model.InvoicePage, error) {
	if page < 1 {
		page = 1
	}
	variant := query + "|" + strconv.Itoa(page)
	log := s.log(ctx)

	var cached model.InvoicePage
	err := s.views.Get(ctx, InvoicesPath, variant, &cached)
	if err == nil {
		return &cached, nil
	}

	var generation int64
	cacheable := errors.Is(err, cache.ErrMiss)
	if cacheable {
		generation, err = s.views.Generation(ctx, InvoicesPath)
		cacheable = err == nil
	}
	if !cacheable {
		log.Warn().Err(err).Msg("view cache unavailable, querying database")
	}

	invoices, err := s.store.ListInvoices(ctx, query, page)
	if err != nil {
		return nil, err
	}

	result := &model.InvoicePage{Query: query, Page: page, Invoices: invoices}
	if !cacheable {
		return result, nil
	}

	err = s.views.Set(ctx, InvoicesPath, variant, generation, result)
	switch {
	case errors.Is(err, cache.ErrStale):
		log.Debug().Msg("invoices view revalidated while listing, not caching")
	case err != nil:
		log.Warn().Err(err).Msg("failed to cache invoices view")
	}

	return result, nil
}

func (s *InvoiceService) revalidate(ctx context.Context) {
	if err := s.views.RevalidatePath(ctx, InvoicesPath); err != nil {
		s.log(ctx).Error().Err(err).Str("path", InvoicesPath).Msg("failed to revalidate view")
	}
}

// log prefers the request-scoped logger carried by ctx.
func (s *InvoiceService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

func redirectLocation(date string) string {
	return InvoicesPath + "?query=" + url.QueryEscape(date)
}
