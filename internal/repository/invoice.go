package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/invoices/internal/model"
	"github.com/rs/zerolog"
)

// InvoicesPerPage is the size of one page of the invoices list.
const InvoicesPerPage = 6

type InvoiceRepository struct {
	db     DBTX
	logger *zerolog.Logger
}

func NewInvoiceRepository(db DBTX, logger *zerolog.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

const insertInvoice = `
INSERT INTO invoices (customer_id, amount, status, date)
VALUES ($1, $2, $3, $4)
RETURNING id`

// InsertInvoice stores a new invoice and returns the generated id.
func (r *InvoiceRepository) InsertInvoice(ctx context.Context, fields model.InvoiceFields, date string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, insertInvoice,
		fields.CustomerID, fields.AmountCents, string(fields.Status), date,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert invoice: %w", err)
	}
	return id, nil
}

const updateInvoice = `
UPDATE invoices
SET customer_id = $1, amount = $2, status = $3
WHERE id = $4`

// UpdateInvoice overwrites customer, amount and status of the invoice.
// The date is left untouched. An unknown id matches no row and is not an error.
func (r *InvoiceRepository) UpdateInvoice(ctx context.Context, id string, fields model.InvoiceFields) error {
	tag, err := r.db.Exec(ctx, updateInvoice,
		fields.CustomerID, fields.AmountCents, string(fields.Status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("invoice_id", id).Msg("update matched no invoice")
	}
	return nil
}

const deleteInvoice = `DELETE FROM invoices WHERE id = $1`

func (r *InvoiceRepository) DeleteInvoice(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteInvoice, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("invoice_id", id).Msg("delete matched no invoice")
	}
	return nil
}

const listInvoices = `
SELECT
	invoices.id,
	invoices.customer_id,
	invoices.amount,
	invoices.status,
	to_char(invoices.date, 'YYYY-MM-DD'),
	customers.name,
	customers.email,
	customers.image_url
FROM invoices
JOIN customers ON invoices.customer_id = customers.id
WHERE
	customers.name ILIKE $1 OR
	customers.email ILIKE $1 OR
	invoices.amount::text ILIKE $1 OR
	invoices.date::text ILIKE $1 OR
	invoices.status ILIKE $1
ORDER BY invoices.date DESC
LIMIT $2 OFFSET $3`

// ListInvoices returns one page of invoices whose customer, amount, date or
// status contains query. Pages start at 1; anything lower is page 1.
func (r *InvoiceRepository) ListInvoices(ctx context.Context, query string, page int) ([]model.InvoiceListItem, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * InvoicesPerPage

	rows, err := r.db.Query(ctx, listInvoices, "%"+query+"%", InvoicesPerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]model.InvoiceListItem, 0, InvoicesPerPage)
	for rows.Next() {
		var (
			item   model.InvoiceListItem
			status string
		)
		if err := rows.Scan(
			&item.ID,
			&item.CustomerID,
			&item.Amount,
			&status,
			&item.Date,
			&item.CustomerName,
			&item.CustomerEmail,
			&item.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		item.Status = model.InvoiceStatus(status)
		invoices = append(invoices, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}

const getInvoiceNotification = `
SELECT
	invoices.id,
	invoices.amount,
	invoices.status,
	to_char(invoices.date, 'YYYY-MM-DD'),
	customers.name,
	customers.email
FROM invoices
JOIN customers ON invoices.customer_id = customers.id
WHERE invoices.id = $1`

// GetInvoiceNotification loads the invoice and its customer for the
// invoice-created email. A missing invoice wraps pgx.ErrNoRows.
func (r *InvoiceRepository) GetInvoiceNotification(ctx context.Context, id string) (*model.InvoiceNotification, error) {
	var (
		n      model.InvoiceNotification
		status string
	)
	err := r.db.QueryRow(ctx, getInvoiceNotification, id).Scan(
		&n.InvoiceID,
		&n.Amount,
		&status,
		&n.Date,
		&n.CustomerName,
		&n.CustomerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %s: %w", id, err)
	}
	n.Status = model.InvoiceStatus(status)
	return &n, nil
}
