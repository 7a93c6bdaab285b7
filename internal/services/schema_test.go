package services

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viktorvidual/invoices/internal/models"
	"github.com/viktorvidual/invoices/validation"
)

func TestSchemaVariants(t *testing.T) {
	want := []string{FieldCustomerID, FieldAmount, FieldStatus}
	assert.Equal(t, want, CreateInvoiceSchema.Fields())
	assert.Equal(t, want, UpdateInvoiceSchema.Fields())
}

func TestParseInvoice(t *testing.T) {
	inv, report := parseInvoice(CreateInvoiceSchema, url.Values{
		FieldCustomerID: {"3958dc9e-712f-4377-85e9-fec4b6a6442a"},
		FieldAmount:     {" 42.5"},
		FieldStatus:     {"paid"},
	})
	require.True(t, report.Empty())
	assert.Equal(t, "3958dc9e-712f-4377-85e9-fec4b6a6442a", inv.CustomerID())
	assert.Equal(t, "42.5", inv.Amount().String())
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status())
}

func TestParseInvoice_ErrorKinds(t *testing.T) {
	_, report := parseInvoice(CreateInvoiceSchema, url.Values{
		FieldAmount: {"-1"},
		FieldStatus: {"PAID"},
	})
	kinds := map[string]validation.Kind{}
	for _, e := range report.Errors() {
		kinds[e.Field] = e.Kind
	}
	assert.Equal(t, map[string]validation.Kind{
		FieldCustomerID: validation.InvalidType,
		FieldAmount:     validation.ConstraintViolation,
		FieldStatus:     validation.InvalidType,
	}, kinds)
}

func TestResult(t *testing.T) {
	assert.False(t, Success().Failed())
	assert.False(t, Redirect("/x").Failed())
	assert.True(t, Failure("m", nil).Failed())
	assert.False(t, Failure("m", nil).HasFieldErrors())
	assert.True(t, Failure("m", validation.Violations{"a": {"b"}}).HasFieldErrors())
}
