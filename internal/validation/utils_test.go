package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/deppfellow/invoices/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notePayload struct {
	ID    string `param:"id" validate:"required"`
	Title string `form:"title" validate:"required,max=10"`
	Count int    `form:"count" validate:"gte=1"`
}

func (p *notePayload) Validate() error {
	return validator.New().Struct(p)
}

func newFormContext(t *testing.T, form url.Values, id string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/notes/"+id, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestBindAndValidate(t *testing.T) {
	t.Run("valid payload binds path and form", func(t *testing.T) {
		form := url.Values{"title": {"hello"}, "count": {"2"}}
		c := newFormContext(t, form, "3958dc9e-712f-4377-85e9-fec4b6a6442a")

		payload := &notePayload{}
		require.NoError(t, BindAndValidate(c, payload))
		assert.Equal(t, "3958dc9e-712f-4377-85e9-fec4b6a6442a", payload.ID)
		assert.Equal(t, "hello", payload.Title)
		assert.Equal(t, 2, payload.Count)
	})

	t.Run("tag failures become field errors", func(t *testing.T) {
		form := url.Values{"title": {""}, "count": {"0"}}
		c := newFormContext(t, form, "")

		err := BindAndValidate(c, &notePayload{})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.ElementsMatch(t, []errs.FieldError{
			{Field: "id", Error: "is required"},
			{Field: "title", Error: "is required"},
			{Field: "count", Error: "must be at least 1"},
		}, httpErr.Errors)
	})

	t.Run("max length is reported in characters", func(t *testing.T) {
		form := url.Values{"title": {"far too long a title"}, "count": {"1"}}
		c := newFormContext(t, form, "3958dc9e-712f-4377-85e9-fec4b6a6442a")

		err := BindAndValidate(c, &notePayload{})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, []errs.FieldError{{Field: "title", Error: "must not exceed 10 characters"}}, httpErr.Errors)
	})

	t.Run("bind failure is a bad request", func(t *testing.T) {
		form := url.Values{"title": {"hello"}, "count": {"many"}}
		c := newFormContext(t, form, "3958dc9e-712f-4377-85e9-fec4b6a6442a")

		err := BindAndValidate(c, &notePayload{})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.NotEmpty(t, httpErr.Message)
	})
}

func TestNewFormError(t *testing.T) {
	err := NewFormError(CustomValidationErrors{
		{Field: "amount", Message: "Please enter an amount greater than $0."},
	})

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, err.Override)
	assert.Equal(t, []errs.FieldError{{Field: "amount", Error: "Please enter an amount greater than $0."}}, err.Errors)
}

func TestGroupFieldErrors(t *testing.T) {
	assert.Nil(t, GroupFieldErrors(nil))

	grouped := CustomValidationErrors{
		{Field: "amount", Message: "first"},
		{Field: "status", Message: "bad status"},
		{Field: "amount", Message: "second"},
	}.Group()

	assert.Equal(t, map[string][]string{
		"amount": {"first", "second"},
		"status": {"bad status"},
	}, grouped)
}
