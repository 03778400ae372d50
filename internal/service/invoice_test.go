package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/invoices/internal/cache"
	"github.com/deppfellow/invoices/internal/errs"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// calls records the order of side effects across the fakes.
type calls []string

type fakeStore struct {
	log       *calls
	invoices  map[string]model.InvoiceFields
	dates     map[string]string
	nextID    string
	insertErr error
	deleteErr error
	lists     int
	// afterRead runs once the list rows have been read.
	afterRead func()
}

func newFakeStore(log *calls) *fakeStore {
	return &fakeStore{
		log:      log,
		invoices: map[string]model.InvoiceFields{},
		dates:    map[string]string{},
		nextID:   "d6e15727-9fe1-4961-8c5b-ea44a9bd81aa",
	}
}

func (f *fakeStore) InsertInvoice(_ context.Context, fields model.InvoiceFields, date string) (string, error) {
	*f.log = append(*f.log, "insert")
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.invoices[f.nextID] = fields
	f.dates[f.nextID] = date
	return f.nextID, nil
}

func (f *fakeStore) UpdateInvoice(_ context.Context, id string, fields model.InvoiceFields) error {
	*f.log = append(*f.log, "update")
	if _, ok := f.invoices[id]; ok {
		f.invoices[id] = fields
	}
	return nil
}

func (f *fakeStore) DeleteInvoice(_ context.Context, id string) error {
	*f.log = append(*f.log, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.invoices, id)
	return nil
}

func (f *fakeStore) ListInvoices(_ context.Context, query string, page int) ([]model.InvoiceListItem, error) {
	f.lists++
	items := []model.InvoiceListItem{}
	for id, fields := range f.invoices {
		items = append(items, model.InvoiceListItem{ID: id, Amount: fields.AmountCents, Status: fields.Status})
	}
	if hook := f.afterRead; hook != nil {
		f.afterRead = nil
		hook()
	}
	return items, nil
}

type fakeViews struct {
	log         *calls
	revalidated []string
	err         error
	stored      map[string]model.InvoicePage
	generation  int64
}

func newFakeViews(log *calls) *fakeViews {
	return &fakeViews{log: log, stored: map[string]model.InvoicePage{}}
}

func (f *fakeViews) Get(_ context.Context, path, variant string, dst any) error {
	if f.err != nil {
		return f.err
	}
	page, ok := f.stored[path+"#"+variant]
	if !ok {
		return cache.ErrMiss
	}
	*dst.(*model.InvoicePage) = page
	return nil
}

func (f *fakeViews) Generation(_ context.Context, _ string) (int64, error) {
	return f.generation, f.err
}

func (f *fakeViews) Set(_ context.Context, path, variant string, generation int64, value any) error {
	if f.err != nil {
		return f.err
	}
	if generation != f.generation {
		return cache.ErrStale
	}
	f.stored[path+"#"+variant] = *value.(*model.InvoicePage)
	return nil
}

func (f *fakeViews) RevalidatePath(_ context.Context, path string) error {
	*f.log = append(*f.log, "revalidate "+path)
	f.revalidated = append(f.revalidated, path)
	f.generation++
	for key := range f.stored {
		if strings.HasPrefix(key, path+"#") {
			delete(f.stored, key)
		}
	}
	return f.err
}

type fakeNotifier struct {
	log *calls
	ids []string
	err error
}

func (f *fakeNotifier) EnqueueInvoiceCreated(_ context.Context, id string) error {
	*f.log = append(*f.log, "notify")
	f.ids = append(f.ids, id)
	return f.err
}

type fixture struct {
	svc      *InvoiceService
	store    *fakeStore
	views    *fakeViews
	notifier *fakeNotifier
	calls    *calls
}

func newFixture() *fixture {
	log := &calls{}
	f := &fixture{
		store:    newFakeStore(log),
		views:    newFakeViews(log),
		notifier: &fakeNotifier{log: log},
		calls:    log,
	}
	logger := zerolog.Nop()
	f.svc = NewInvoiceService(f.store, f.views, f.notifier, &logger)
	f.svc.now = func() time.Time {
		// Late evening west of UTC is already the next day in UTC.
		return time.Date(2024, 3, 8, 22, 30, 0, 0, time.FixedZone("EST", -5*3600))
	}
	return f
}

const customerID = "3958dc9e-712f-4377-85e9-fec4b6a6442a"

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("amount of zero is rejected without side effects", func(t *testing.T) {
		f := newFixture()
		form := model.InvoiceForm{CustomerID: customerID, Amount: "0", Status: "pending"}

		result := f.svc.Create(ctx, nil, form)

		require.NotNil(t, result.State)
		assert.Empty(t, result.Redirect)
		assert.Equal(t, model.MsgCreateFailed, result.State.Message)
		assert.Equal(t, []string{model.MsgAmountPositive}, result.State.Errors["amount"])
		assert.Equal(t, &form, result.State.Values)
		assert.Empty(t, f.store.invoices)
		assert.Empty(t, *f.calls)
	})

	t.Run("valid form inserts cents then invalidates then redirects", func(t *testing.T) {
		f := newFixture()

		result := f.svc.Create(ctx, nil, model.InvoiceForm{CustomerID: customerID, Amount: "125.5", Status: "paid"})

		assert.Nil(t, result.State)
		assert.Equal(t, "/dashboard/invoices?query=2024-03-09", result.Redirect)
		require.Len(t, f.store.invoices, 1)
		stored := f.store.invoices[f.store.nextID]
		assert.Equal(t, int64(12550), stored.AmountCents)
		assert.Equal(t, model.InvoiceStatusPaid, stored.Status)
		assert.Equal(t, "2024-03-09", f.store.dates[f.store.nextID])
		assert.Equal(t, calls{"insert", "revalidate /dashboard/invoices", "notify"}, *f.calls)
		assert.Equal(t, []string{f.store.nextID}, f.notifier.ids)
	})

	t.Run("persistence failure is swallowed", func(t *testing.T) {
		f := newFixture()
		f.store.insertErr = errors.New("connection refused")

		result := f.svc.Create(ctx, nil, model.InvoiceForm{CustomerID: customerID, Amount: "10", Status: "pending"})

		assert.Nil(t, result.State)
		assert.Equal(t, "/dashboard/invoices?query=2024-03-09", result.Redirect)
		assert.Equal(t, calls{"insert", "revalidate /dashboard/invoices"}, *f.calls)
		assert.Empty(t, f.notifier.ids)
	})

	t.Run("cache and queue failures do not block the redirect", func(t *testing.T) {
		f := newFixture()
		f.views.err = errors.New("redis down")
		f.notifier.err = errors.New("redis down")

		result := f.svc.Create(ctx, nil, model.InvoiceForm{CustomerID: customerID, Amount: "10", Status: "pending"})

		assert.Equal(t, "/dashboard/invoices?query=2024-03-09", result.Redirect)
	})

	t.Run("without notifier nothing is enqueued", func(t *testing.T) {
		f := newFixture()
		f.svc.notifier = nil

		result := f.svc.Create(ctx, nil, model.InvoiceForm{CustomerID: customerID, Amount: "10", Status: "pending"})

		assert.NotEmpty(t, result.Redirect)
		assert.Equal(t, calls{"insert", "revalidate /dashboard/invoices"}, *f.calls)
	})
}

func TestInvoiceService_Update(t *testing.T) {
	ctx := context.Background()
	form := model.InvoiceForm{CustomerID: customerID, Amount: "99.99", Status: "paid"}

	t.Run("existing invoice is overwritten", func(t *testing.T) {
		f := newFixture()
		id := f.store.nextID
		f.store.invoices[id] = model.InvoiceFields{CustomerID: "old", AmountCents: 1, Status: model.InvoiceStatusPending}

		location, err := f.svc.Update(ctx, id, form)

		require.NoError(t, err)
		assert.Equal(t, "/dashboard/invoices?query=2024-03-09", location)
		assert.Equal(t, model.InvoiceFields{CustomerID: customerID, AmountCents: 9999, Status: model.InvoiceStatusPaid}, f.store.invoices[id])
		assert.Equal(t, calls{"update", "revalidate /dashboard/invoices"}, *f.calls)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		f := newFixture()

		location, err := f.svc.Update(ctx, "a0a0a0a0-0000-4000-8000-000000000000", form)

		require.NoError(t, err)
		assert.NotEmpty(t, location)
		assert.Empty(t, f.store.invoices)
	})

	t.Run("invalid form is returned as a bad request", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Update(ctx, f.store.nextID, model.InvoiceForm{CustomerID: customerID, Amount: "-3", Status: "late"})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.ElementsMatch(t, []errs.FieldError{
			{Field: "amount", Error: model.MsgAmountPositive},
			{Field: "status", Error: "Invalid enum value. Expected 'pending' | 'paid', received 'late'"},
		}, httpErr.Errors)
		assert.Empty(t, *f.calls)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	f := newFixture()
	keep := "b1b1b1b1-0000-4000-8000-000000000000"
	drop := "c2c2c2c2-0000-4000-8000-000000000000"
	f.store.invoices[keep] = model.InvoiceFields{CustomerID: customerID, AmountCents: 100, Status: model.InvoiceStatusPaid}
	f.store.invoices[drop] = model.InvoiceFields{CustomerID: customerID, AmountCents: 200, Status: model.InvoiceStatusPaid}

	f.svc.Delete(context.Background(), drop)

	assert.Contains(t, f.store.invoices, keep)
	assert.NotContains(t, f.store.invoices, drop)
	assert.Equal(t, []string{InvoicesPath}, f.views.revalidated)
	assert.Equal(t, calls{"delete", "revalidate /dashboard/invoices"}, *f.calls)
}

func TestInvoiceService_DeleteMalformedID(t *testing.T) {
	f := newFixture()
	f.store.deleteErr = fmt.Errorf("failed to delete invoice: %w", &pgconn.PgError{
		Code:    "22P02",
		Message: `invalid input syntax for type uuid: "42"`,
	})

	f.svc.Delete(context.Background(), "42")

	assert.Equal(t, calls{"delete", "revalidate /dashboard/invoices"}, *f.calls)
}

func TestInvoiceService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from the cache", func(t *testing.T) {
		f := newFixture()
		f.store.invoices["i1"] = model.InvoiceFields{AmountCents: 100, Status: model.InvoiceStatusPaid}

		first, err := f.svc.List(ctx, "", 0)
		require.NoError(t, err)
		second, err := f.svc.List(ctx, "", 1)
		require.NoError(t, err)

		assert.Equal(t, 1, f.store.lists)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, second.Page)
	})

	t.Run("revalidation forces a fresh query", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.List(ctx, "lee", 1)
		require.NoError(t, err)
		f.svc.Delete(ctx, "missing")
		_, err = f.svc.List(ctx, "lee", 1)
		require.NoError(t, err)

		assert.Equal(t, 2, f.store.lists)
	})

	t.Run("page read before a create is not cached", func(t *testing.T) {
		f := newFixture()
		f.store.afterRead = func() {
			f.svc.Create(ctx, nil, model.InvoiceForm{CustomerID: customerID, Amount: "10", Status: "pending"})
		}

		stale, err := f.svc.List(ctx, "", 1)
		require.NoError(t, err)
		assert.Empty(t, stale.Invoices)
		assert.Empty(t, f.views.stored)

		fresh, err := f.svc.List(ctx, "", 1)
		require.NoError(t, err)
		assert.Len(t, fresh.Invoices, 1)
		assert.Equal(t, 2, f.store.lists)
	})

	t.Run("cache outage falls back to the database", func(t *testing.T) {
		f := newFixture()
		f.views.err = errors.New("redis down")

		page, err := f.svc.List(ctx, "", 1)

		require.NoError(t, err)
		assert.NotNil(t, page)
		assert.Equal(t, 1, f.store.lists)
	})
}

func TestInvoiceService_ListWithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture()
	logger := zerolog.Nop()
	f.svc.views = cache.NewViewCache(client, &logger)

	// A create commits and revalidates between the read and the cache write.
	f.store.afterRead = func() {
		result := f.svc.Create(ctx, nil, model.InvoiceForm{CustomerID: customerID, Amount: "10", Status: "pending"})
		require.NotEmpty(t, result.Redirect)
	}

	stale, err := f.svc.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Empty(t, stale.Invoices)
	assert.False(t, mr.Exists("view:"+InvoicesPath))

	fresh, err := f.svc.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, fresh.Invoices, 1)
	assert.Equal(t, int64(1000), fresh.Invoices[0].Amount)

	cached, err := f.svc.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Equal(t, fresh, cached)
	assert.Equal(t, 2, f.store.lists)
}
