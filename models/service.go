package models

import (
	"time"
)

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string  `gorm:"not null;uniqueIndex" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	IsActive    bool    `gorm:"not null" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ServiceSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (s *Service) Summary() ServiceSummary {
	return ServiceSummary{ID: s.ID, Name: s.Name, Price: s.Price}
}
