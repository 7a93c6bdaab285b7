package db

import (
	"fmt"

	"github.com/viktorvidual/invoices/internal/models"
	"gorm.io/gorm"
)

var seedCustomers = []models.Customer{
	{ID: "3958dc9e-712f-4377-85e9-fec4b6a6442a", Name: "Delba de Oliveira", Email: "delba@oliveira.com", ImageURL: "/customers/delba-de-oliveira.png"},
	{ID: "3958dc9e-742f-4377-85e9-fec4b6a6442a", Name: "Lee Robinson", Email: "lee@robinson.com", ImageURL: "/customers/lee-robinson.png"},
	{ID: "76d65c26-f784-44a2-ac19-586678f7c2f2", Name: "Michael Novotny", Email: "michael@novotny.com", ImageURL: "/customers/michael-novotny.png"},
}

// Seed inserts the sample customers that are not present yet.
func Seed(db *gorm.DB) error {
	for _, c := range seedCustomers {
		if err := db.Where(models.Customer{Email: c.Email}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed customer %s: %w", c.Email, err)
		}
	}
	return nil
}
