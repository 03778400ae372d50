package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "NOT_FOUND", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)))
}

func TestNewBadRequestError(t *testing.T) {
	fieldErrors := []FieldError{{Field: "amount", Error: "Please enter an amount greater than $0."}}

	err := NewBadRequestError("Validation failed", true, nil, fieldErrors, nil)

	assert.Equal(t, "BAD_REQUEST", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, err.Override)
	assert.Equal(t, fieldErrors, err.Errors)
	assert.Equal(t, "Validation failed", err.Error())

	code := "INVOICE_INVALID"
	custom := NewBadRequestError("bad", false, &code, nil, nil)
	assert.Equal(t, "INVOICE_INVALID", custom.Code)
}

func TestHTTPError_Is(t *testing.T) {
	wrapped := fmt.Errorf("update invoice: %w", NewNotFoundError("Invoice not found", false, nil))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))
	assert.False(t, errors.Is(errors.New("plain"), &HTTPError{}))

	var httpErr *HTTPError
	assert.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestHTTPError_WithMessage(t *testing.T) {
	base := NewInternalServerError()
	copied := base.WithMessage("Something broke")

	assert.Equal(t, "Something broke", copied.Message)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), base.Message)
	assert.Equal(t, base.Code, copied.Code)
}

func TestNewRedirectAction(t *testing.T) {
	action := NewRedirectAction("Invoice saved", "/dashboard/invoices?query=2026-10-19")

	assert.Equal(t, ActionTypeRedirect, action.Type)
	assert.Equal(t, "/dashboard/invoices?query=2026-10-19", action.Value)
}
