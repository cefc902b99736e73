package utils

import (
	"errors"
	"log"
	"os"

	"customer-care-backend/models"

	"gorm.io/gorm"
)

// SeedAdmin creates the default admin account once. Safe to call on every
// startup.
func SeedAdmin(db *gorm.DB) error {
	var admin models.User
	err := db.Where("role = ?", "admin").First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	user := models.User{
		Name:     "Administrator",
		Email:    email,
		Password: password, // hashed in BeforeCreate
		Role:     "admin",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.Printf("Created default admin account %s", email)
	return nil
}
