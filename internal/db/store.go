package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/viktorvidual/invoices/internal/models"
	"github.com/viktorvidual/invoices/internal/services"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("invoice not found")

var _ services.MutationExecutor = (*InvoiceStore)(nil)

// InvoiceStore is the gorm backed MutationExecutor. Each method issues a
// single statement and relies on the database for atomicity.
type InvoiceStore struct {
	db *gorm.DB
}

func NewInvoiceStore(db *gorm.DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

// InsertInvoice inserts a row and returns the generated id.
func (s *InvoiceStore) InsertInvoice(ctx context.Context, n services.NewInvoice) (string, error) {
	inv := models.Invoice{
		CustomerID: n.CustomerID,
		Amount:     n.Amount,
		Status:     n.Status,
		Date:       n.Date,
	}
	if err := s.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return "", fmt.Errorf("insert invoice: %w", err)
	}
	return inv.ID, nil
}

// UpdateInvoice rewrites customer_id, amount and status where id matches.
func (s *InvoiceStore) UpdateInvoice(ctx context.Context, id string, c services.InvoiceChanges) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"customer_id": c.CustomerID,
			"amount":      c.Amount,
			"status":      string(c.Status),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("update invoice %s: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteInvoice removes the row matching id. Zero affected rows is not an error.
func (s *InvoiceStore) DeleteInvoice(ctx context.Context, id string) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete invoice %s: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// FindInvoice loads a single invoice by id.
func (s *InvoiceStore) FindInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find invoice %s: %w", id, err)
	}
	return &inv, nil
}
