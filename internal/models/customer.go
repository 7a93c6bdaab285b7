package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the party an invoice is billed to.
type Customer struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ImageURL string `gorm:"size:500" json:"image_url,omitempty"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
