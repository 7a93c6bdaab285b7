package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice is the persisted invoice record.
// Amount is always stored in minor currency units (cents).
type Invoice struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// CustomerID must reference an existing customer; the store enforces it.
	CustomerID string    `gorm:"size:36;index;not null" json:"customerId"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"-"`

	Amount int64         `gorm:"not null" json:"amount"`
	Status InvoiceStatus `gorm:"size:20;not null" json:"status"`

	// Date is the ISO calendar date (YYYY-MM-DD) the invoice was created.
	Date string `gorm:"size:10;not null" json:"date"`
}

// BeforeCreate assigns the record identifier. Callers never supply one.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
