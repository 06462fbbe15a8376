package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-records/internal/models"
	"gorm.io/gorm"
)

// Seed inserts a few demo clients and people. Running it twice is a no-op.
func Seed(conn *gorm.DB) error {
	clients := []models.Client{
		{CompanyName: "Aquent", Website: "https://aquent.com", Phone: "617-535-5000", Address: "501 Boylston St, Boston, MA"},
		{CompanyName: "Globex Corporation", Website: "https://globex.example", Phone: "555-010-2000", Address: "1 Globex Way, Cypress Creek"},
	}
	ids := make(map[string]uint, len(clients))
	for _, c := range clients {
		var existing models.Client
		err := conn.Where("company_name = ?", c.CompanyName).First(&existing).Error
		switch {
		case err == nil:
			ids[c.CompanyName] = existing.ID
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("seeding client %s: %w", c.CompanyName, err)
		}
		c.Version = 1
		if err := conn.Create(&c).Error; err != nil {
			return fmt.Errorf("seeding client %s: %w", c.CompanyName, err)
		}
		ids[c.CompanyName] = c.ID
	}

	aquent := ids["Aquent"]
	people := []models.Person{
		{FirstName: "Ada", LastName: "Lovelace", EmailAddress: "ada@example.com", StreetAddress: "12 Analytical Row", City: "Boston", State: "MA", ZipCode: "02116", ClientID: &aquent},
		{FirstName: "Grace", LastName: "Hopper", EmailAddress: "grace@example.com", StreetAddress: "99 Cobol Ave", City: "Arlington", State: "VA", ZipCode: "22201"},
		{FirstName: "Alan", LastName: "Turing", EmailAddress: "alan@example.com", StreetAddress: "7 Enigma Ct", City: "Princeton", State: "NJ", ZipCode: "08540-1234"},
	}
	for _, p := range people {
		var count int64
		if err := conn.Model(&models.Person{}).Where("email_address = ?", p.EmailAddress).Count(&count).Error; err != nil {
			return fmt.Errorf("seeding person %s: %w", p.EmailAddress, err)
		}
		if count > 0 {
			continue
		}
		p.Version = 1
		if err := conn.Omit("Client").Create(&p).Error; err != nil {
			return fmt.Errorf("seeding person %s: %w", p.EmailAddress, err)
		}
	}
	return nil
}
