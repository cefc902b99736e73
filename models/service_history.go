package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MaxHistoryImages caps the attachment list of a single history record.
const MaxHistoryImages = 10

type ServiceHistory struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CustomerID uint `gorm:"index;not null" json:"customerId"`
	ServiceID  uint `gorm:"index;not null" json:"serviceId"`
	EmployeeID uint `gorm:"index;not null" json:"employeeId"`

	ServiceDate   time.Time  `gorm:"type:date;not null;index" json:"serviceDate"`
	Price         float64    `gorm:"type:decimal(10,2);not null" json:"price"`
	PaymentMethod string     `gorm:"size:100;not null;default:'cash'" json:"paymentMethod"`
	Notes         string     `gorm:"type:text" json:"notes"`
	Images        StringList `gorm:"type:jsonb;default:'[]'" json:"images"`

	Customer Customer `gorm:"foreignKey:CustomerID" json:"-"`
	Service  Service  `gorm:"foreignKey:ServiceID" json:"-"`
	Employee Employee `gorm:"foreignKey:EmployeeID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StringList stores an ordered list of strings as a jsonb column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

func (l StringList) Contains(s string) bool {
	for _, item := range l {
		if item == s {
			return true
		}
	}
	return false
}
