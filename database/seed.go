package database

import (
	"log"
	"time"

	"indoor_booking/model"

	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func parseDate(dateStr string) time.Time {
	t, _ := time.Parse("2006-01-02", dateStr)
	return t
}

func SeedData(db *gorm.DB) {
	bytes, err := bcrypt.GenerateFromPassword([]byte("changeme123"), 10)
	hashPassword := string(bytes)
	if err != nil {
		hashPassword = "changeme123"
	}
	accounts := []model.Account{
		{Username: "Administration", Password: hashPassword, Role: "ADMIN", IsActive: true},
	}

	for _, account := range accounts {
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}

	venues := []model.Venue{
		{Name: "Basketball Court", Category: "Basketball", PricePerHour: 500, IsActive: true},
		{Name: "Tennis Court", Category: "Tennis", PricePerHour: 600, IsActive: true},
		{Name: "Badminton Court", Category: "Badminton", PricePerHour: 400, IsActive: true},
		{Name: "Volleyball Court", Category: "Volleyball", PricePerHour: 450, IsActive: true},
	}

	for _, venue := range venues {
		venue.PublicSlug = slug.Make(venue.Name)
		if err := db.Where(model.Venue{Name: venue.Name}).FirstOrCreate(&venue).Error; err != nil {
			log.Println("failed to seed data for venue:", venue.Name, "error:", err)
		}
	}

	discounts := []model.Discount{
		{
			Code:       "SUMMER2024",
			Percentage: 10,
			ValidFrom:  parseDate("2024-06-01"),
			ValidUntil: parseDate("2024-08-31").Add(24*time.Hour - time.Second),
			IsActive:   true,
		},
	}

	for _, discount := range discounts {
		if err := db.Where(model.Discount{Code: discount.Code}).FirstOrCreate(&discount).Error; err != nil {
			log.Println("failed to seed data for discount:", discount.Code, "error:", err)
		}
	}
}
