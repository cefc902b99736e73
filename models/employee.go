package models

import (
	"time"
)

type Employee struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FullName string  `gorm:"not null" json:"fullName"`
	Phone    string  `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	Email    *string `gorm:"uniqueIndex" json:"email"`
	Address  string  `gorm:"type:text" json:"address"`
	Position string  `json:"position"`
	Notes    string  `gorm:"type:text" json:"notes"`
	IsActive bool    `gorm:"not null" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type EmployeeSummary struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
}

func (e *Employee) Summary() EmployeeSummary {
	return EmployeeSummary{ID: e.ID, FullName: e.FullName}
}
