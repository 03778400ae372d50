package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/deppfellow/invoices/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Field error messages shown next to the invoice form inputs.
const (
	MsgSelectCustomer = "Please select a customer."
	MsgAmountPositive = "Please enter an amount greater than $0."
	MsgAmountNaN      = "Expected number, received nan"
	MsgAmountTooLarge = "Please enter an amount no greater than $21,474,836.47."
	MsgSelectStatus   = "Please select an invoice status."

	// msgStatusEnum is used when a status was submitted but is not one of
	// the known values.
	msgStatusEnum = "Invalid enum value. Expected 'pending' | 'paid', received '%s'"

	// MsgCreateFailed is the form-level message for a rejected create.
	MsgCreateFailed = "Missing Fields. Failed to Create Invoice."
)

var invoiceFieldMessages = map[string]string{
	"customerId": MsgSelectCustomer,
	"amount":     MsgAmountPositive,
	"status":     MsgSelectStatus,
}

// ErrAmountTooLarge is returned by AmountToCents for amounts that do not fit
// the invoices.amount column.
var ErrAmountTooLarge = errors.New("amount exceeds the largest storable invoice amount")

var (
	centsPerUnit   = decimal.NewFromInt(100)
	maxAmountCents = decimal.NewFromInt(math.MaxInt32)
	minAmountCents = decimal.NewFromInt(math.MinInt32)
)

// invoiceValidator reports field names using the form tag, so errors line
// up with the submitted inputs.
var invoiceValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// InvoiceForm is the raw invoice form as submitted by the browser.
type InvoiceForm struct {
	CustomerID string `form:"customerId" json:"customerId,omitempty"`
	Amount     string `form:"amount" json:"amount,omitempty"`
	Status     string `form:"status" json:"status,omitempty"`
}

// InvoiceFields are the typed values of a valid InvoiceForm.
type InvoiceFields struct {
	CustomerID  string        `form:"customerId" validate:"required"`
	AmountCents int64         `form:"amount" validate:"gt=0"`
	Status      InvoiceStatus `form:"status" validate:"oneof=pending paid"`
}

// FormState is what a rejected form submission sends back for redisplay:
// the submitted values, per-field messages and a form-level message.
type FormState struct {
	Values  *InvoiceForm        `json:"values,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

// ParseInvoiceForm coerces and validates the raw form.
//
// The amount is read as a decimal number of dollars (blank counts as zero)
// and converted to whole cents, rounding half away from zero. On failure the
// returned error is a validation.CustomValidationErrors with one entry per
// offending field.
func ParseInvoiceForm(form InvoiceForm) (InvoiceFields, error) {
	var fieldErrors validation.CustomValidationErrors

	fields := InvoiceFields{
		CustomerID: strings.TrimSpace(form.CustomerID),
		Status:     InvoiceStatus(form.Status),
	}

	cents, err := AmountToCents(form.Amount)
	amountParsed := err == nil
	if amountParsed {
		fields.AmountCents = cents
	} else {
		msg := MsgAmountNaN
		if errors.Is(err, ErrAmountTooLarge) {
			msg = MsgAmountTooLarge
		}
		fieldErrors = append(fieldErrors, validation.CustomValidationError{
			Field:   "amount",
			Message: msg,
		})
	}

	if err := invoiceValidator.Struct(fields); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return InvoiceFields{}, err
		}
		for _, fe := range validationErrors {
			if fe.Field() == "amount" && !amountParsed {
				continue
			}
			msg := invoiceFieldMessages[fe.Field()]
			if fe.Field() == "status" && form.Status != "" {
				msg = fmt.Sprintf(msgStatusEnum, form.Status)
			}
			fieldErrors = append(fieldErrors, validation.CustomValidationError{
				Field:   fe.Field(),
				Message: msg,
			})
		}
	}

	if len(fieldErrors) > 0 {
		return InvoiceFields{}, fieldErrors
	}

	return fields, nil
}

// AmountToCents converts a dollar amount string into cents. Amounts above
// the int4 range of invoices.amount fail with ErrAmountTooLarge; amounts
// below it are clamped, since any negative amount is rejected anyway.
func AmountToCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}

	cents := amount.Mul(centsPerUnit).Round(0)
	if cents.GreaterThan(maxAmountCents) {
		return 0, ErrAmountTooLarge
	}
	if cents.LessThan(minAmountCents) {
		cents = minAmountCents
	}
	return cents.IntPart(), nil
}

// NewFormState builds the state returned for a rejected form.
func NewFormState(form InvoiceForm, fieldErrors validation.CustomValidationErrors, message string) *FormState {
	values := form
	return &FormState{
		Values:  &values,
		Errors:  validation.GroupFieldErrors(fieldErrors),
		Message: message,
	}
}
