package services

import (
	"context"
	"time"

	"github.com/viktorvidual/invoices/internal/logger"
	"github.com/viktorvidual/invoices/internal/models"
	"github.com/viktorvidual/invoices/validation"
	"go.uber.org/zap"
)

// InvoicesPath is the invoice listing view. Every mutation invalidates it.
const InvoicesPath = "/dashboard/invoices"

const (
	MsgCreateMissingFields = "Missing Fields. Failed to Create Invoice."
	MsgUpdateMissingFields = "Missing Fields. Failed to Update Invoice."
	MsgCreateFailed        = "Failed to create invoice"
	MsgUpdateFailed        = "Failed to update invoice"
	MsgDeleteFailed        = "Failed to delete invoice"
)

// NewInvoice is the row inserted by Create. The store assigns the id.
type NewInvoice struct {
	CustomerID string
	Amount     int64 // minor units
	Status     models.InvoiceStatus
	Date       string // YYYY-MM-DD
}

// InvoiceChanges is the column set written by Update. Date is never touched.
type InvoiceChanges struct {
	CustomerID string
	Amount     int64 // minor units
	Status     models.InvoiceStatus
}

// MutationExecutor runs exactly one write statement per call against the store.
// Update and Delete report the number of affected rows.
type MutationExecutor interface {
	InsertInvoice(ctx context.Context, inv NewInvoice) (string, error)
	UpdateInvoice(ctx context.Context, id string, changes InvoiceChanges) (int64, error)
	DeleteInvoice(ctx context.Context, id string) (int64, error)
}

// Invalidator marks a view stale. It is fire-and-forget and idempotent.
type Invalidator interface {
	Invalidate(ctx context.Context, path string)
}

// InvoiceService validates invoice forms and applies create, update and delete.
type InvoiceService struct {
	exec  MutationExecutor
	cache Invalidator
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*InvoiceService)

func WithLogger(l *zap.Logger) Option {
	return func(s *InvoiceService) { s.log = l }
}

// WithClock overrides the time source used for the invoice date.
func WithClock(now func() time.Time) Option {
	return func(s *InvoiceService) { s.now = now }
}

func NewInvoiceService(exec MutationExecutor, cache Invalidator, opts ...Option) *InvoiceService {
	s := &InvoiceService{exec: exec, cache: cache, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the form, inserts the invoice, invalidates the listing and
// redirects to it.
func (s *InvoiceService) Create(ctx context.Context, in validation.Input) Result {
	log := s.logger(ctx)
	log.Info("creating invoice")

	inv, report := parseInvoice(CreateInvoiceSchema, in)
	if !report.Empty() {
		log.Info("invoice form rejected", zap.Any("errors", report.Violations()))
		return Failure(MsgCreateMissingFields, report.Violations())
	}

	// Once persisting starts the operation runs to completion.
	ctx = context.WithoutCancel(ctx)
	id, err := s.exec.InsertInvoice(ctx, NewInvoice{
		CustomerID: inv.CustomerID(),
		Amount:     ToMinorUnits(inv.Amount()),
		Status:     inv.Status(),
		Date:       DateStamp(s.now()),
	})
	if err != nil {
		log.Error("insert invoice", zap.Error(err))
		return Failure(MsgCreateFailed, nil)
	}
	log.Info("invoice created", zap.String("invoice_id", id))

	s.cache.Invalidate(ctx, InvoicesPath)
	return Redirect(InvoicesPath)
}

// Update validates the form and rewrites customer, amount and status of the
// invoice identified by id, then redirects to the listing.
func (s *InvoiceService) Update(ctx context.Context, id string, in validation.Input) Result {
	log := s.logger(ctx).With(zap.String("invoice_id", id))

	inv, report := parseInvoice(UpdateInvoiceSchema, in)
	if !report.Empty() {
		log.Info("invoice form rejected", zap.Any("errors", report.Violations()))
		return Failure(MsgUpdateMissingFields, report.Violations())
	}

	ctx = context.WithoutCancel(ctx)
	rows, err := s.exec.UpdateInvoice(ctx, id, InvoiceChanges{
		CustomerID: inv.CustomerID(),
		Amount:     ToMinorUnits(inv.Amount()),
		Status:     inv.Status(),
	})
	if err != nil {
		log.Error("update invoice", zap.Error(err))
		return Failure(MsgUpdateFailed, nil)
	}
	if rows == 0 {
		log.Warn("update matched no invoice")
	}

	s.cache.Invalidate(ctx, InvoicesPath)
	return Redirect(InvoicesPath)
}

// Delete removes the invoice identified by id and invalidates the listing.
// The id is not validated. Deleting an unknown id succeeds as a no-op.
// Delete does not navigate: it is issued from the listing itself.
func (s *InvoiceService) Delete(ctx context.Context, id string) Result {
	log := s.logger(ctx).With(zap.String("invoice_id", id))

	ctx = context.WithoutCancel(ctx)
	rows, err := s.exec.DeleteInvoice(ctx, id)
	if err != nil {
		log.Error("delete invoice", zap.Error(err))
		return Failure(MsgDeleteFailed, nil)
	}
	log.Info("invoice deleted", zap.Int64("rows", rows))

	s.cache.Invalidate(ctx, InvoicesPath)
	return Success()
}

func (s *InvoiceService) logger(ctx context.Context) *zap.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l.Named("invoices")
	}
	return s.log
}
