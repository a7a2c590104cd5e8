package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	FinanceIncome  = "income"
	FinanceExpense = "expense"

	FinancePaid    = "paid"
	FinancePending = "pending"
)

// FinancialRecord is a back-office income/expense ledger entry, independent
// of the cash drawer ledger.
type FinancialRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Category    string          `gorm:"not null"`
	Status      string          `gorm:"type:varchar(10);not null;default:'pending'"`
	Date        time.Time       `gorm:"index;not null"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
