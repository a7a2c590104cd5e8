package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a CRM record. TotalSpent and LastPurchase are maintained by the
// sale flow, never edited directly through the CRUD endpoints.
type Customer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"index;not null"`
	Email        *string
	Phone        *string
	CPF          *string `gorm:"column:cpf"`
	Address      *string
	City         *string
	State        *string
	BirthDate    *time.Time
	Notes        *string
	TotalSpent   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LastPurchase *time.Time
	Active       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
