package model

import (
	"time"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// DateLayout is the ISO date format invoices are stamped with.
const DateLayout = "2006-01-02"

// Invoice is a row of the invoices table. Amount is in cents.
type Invoice struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customerId"`
	Amount     int64         `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	Date       string        `json:"date"`
}

// InvoiceListItem is an invoice joined with its customer, as shown by the
// invoices list view.
type InvoiceListItem struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customerId"`
	Amount        int64         `json:"amount"`
	Status        InvoiceStatus `json:"status"`
	Date          string        `json:"date"`
	CustomerName  string        `json:"name"`
	CustomerEmail string        `json:"email"`
	ImageURL      string        `json:"imageUrl"`
}

// InvoicePage is one page of the filtered invoices list.
type InvoicePage struct {
	Query    string            `json:"query"`
	Page     int               `json:"page"`
	Invoices []InvoiceListItem `json:"invoices"`
}

// InvoiceNotification carries what the invoice-created email needs.
type InvoiceNotification struct {
	InvoiceID     string
	Amount        int64
	Status        InvoiceStatus
	Date          string
	CustomerName  string
	CustomerEmail string
}

// FormatDate renders t as an invoice date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
