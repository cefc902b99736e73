package models

import (
	"time"
)

type Customer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FullName  string     `gorm:"not null" json:"fullName"`
	Phone     string     `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	BirthDate *time.Time `gorm:"type:date" json:"birthDate"`
	Address   string     `gorm:"type:text" json:"address"`
	Notes     string     `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomerSummary is the denormalized shape embedded in service history responses.
type CustomerSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{ID: c.ID, FullName: c.FullName, Phone: c.Phone}
}
