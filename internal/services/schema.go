package services

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viktorvidual/invoices/internal/models"
	"github.com/viktorvidual/invoices/validation"
)

// Form field names as submitted by the invoice forms.
const (
	FieldID         = "id"
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
	FieldDate       = "date"
)

const (
	MsgSelectCustomer = "Please select a customer"
	MsgAmountNumber   = "Please enter an amount"
	MsgAmountPositive = "Amount must be greater than 0"
	MsgAmountTooLarge = "Amount is too large"
	MsgSelectStatus   = "Please select an invoice status"
)

// MaxAmount is the largest amount whose minor units still fit an int64 (BIGINT) column.
var MaxAmount = decimal.New(math.MaxInt64, -2)

var invoiceFormSchema = validation.NewSchema(
	validation.Field{Name: FieldID, Rules: []validation.Rule{
		validation.Required("Missing invoice id"),
	}},
	validation.Field{Name: FieldCustomerID, Rules: []validation.Rule{
		validation.Required(MsgSelectCustomer),
	}},
	validation.Field{Name: FieldAmount, Rules: []validation.Rule{
		validation.Decimal(MsgAmountNumber),
		validation.GreaterThan(MsgAmountPositive, decimal.Zero),
		validation.LessThanOrEqual(MsgAmountTooLarge, MaxAmount),
	}},
	validation.Field{Name: FieldStatus, Rules: []validation.Rule{
		validation.OneOf(MsgSelectStatus, string(models.InvoiceStatusPending), string(models.InvoiceStatusPaid)),
	}},
	validation.Field{Name: FieldDate, Rules: []validation.Rule{
		validation.Required("Missing invoice date"),
	}},
)

// The id travels as a path parameter and the date is stamped server side,
// so neither is part of the submitted form.
var (
	CreateInvoiceSchema = invoiceFormSchema.Omit(FieldID, FieldDate)
	UpdateInvoiceSchema = invoiceFormSchema.Omit(FieldID, FieldDate)
)

// ValidatedInvoice only exists as the output of a successful parseInvoice.
type ValidatedInvoice struct {
	customerID string
	amount     decimal.Decimal
	status     models.InvoiceStatus
}

func (v ValidatedInvoice) CustomerID() string           { return v.customerID }
func (v ValidatedInvoice) Amount() decimal.Decimal      { return v.amount }
func (v ValidatedInvoice) Status() models.InvoiceStatus { return v.status }

func parseInvoice(schema validation.Schema, in validation.Input) (ValidatedInvoice, validation.Report) {
	report := schema.Validate(in)
	if !report.Empty() {
		return ValidatedInvoice{}, report
	}
	amount, _ := validation.CoerceDecimal(in.Get(FieldAmount))
	return ValidatedInvoice{
		customerID: strings.TrimSpace(in.Get(FieldCustomerID)),
		amount:     amount,
		status:     models.InvoiceStatus(in.Get(FieldStatus)),
	}, report
}
