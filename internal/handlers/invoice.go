package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/viktorvidual/invoices/httpx"
	"github.com/viktorvidual/invoices/internal/db"
	"github.com/viktorvidual/invoices/internal/logger"
	"github.com/viktorvidual/invoices/internal/models"
	"github.com/viktorvidual/invoices/internal/services"
	"github.com/viktorvidual/invoices/validation"
	"go.uber.org/zap"
)

// InvoiceMutator is the mutation pipeline the handlers drive.
type InvoiceMutator interface {
	Create(ctx context.Context, in validation.Input) services.Result
	Update(ctx context.Context, id string, in validation.Input) services.Result
	Delete(ctx context.Context, id string) services.Result
}

type InvoiceReader interface {
	FindInvoice(ctx context.Context, id string) (*models.Invoice, error)
}

type InvoiceHandler struct {
	svc    InvoiceMutator
	reader InvoiceReader
}

func NewInvoiceHandler(svc InvoiceMutator, reader InvoiceReader) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, reader: reader}
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid form submission", nil)
		return
	}
	httpx.Respond(w, r, h.svc.Create(r.Context(), r.PostForm))
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid form submission", nil)
		return
	}
	httpx.Respond(w, r, h.svc.Update(r.Context(), r.PathValue("id"), r.PostForm))
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, r, h.svc.Delete(r.Context(), r.PathValue("id")))
}

// Show returns the stored invoice as JSON.
func (h *InvoiceHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	inv, err := h.reader.FindInvoice(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("find invoice", zap.String("invoice_id", id), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to load invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}
