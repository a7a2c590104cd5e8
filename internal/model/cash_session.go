package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cash session states and movement vocabulary. Movement direction is implied
// by the type — amounts are always stored positive.
const (
	CashSessionOpen   = "open"
	CashSessionClosed = "closed"

	MovementOpening    = "opening"
	MovementSale       = "sale"
	MovementWithdrawal = "withdrawal" // "sangria" — cash taken out to safe/bank
	MovementSupply     = "supply"     // "suprimento" — cash added to the drawer

	PaymentCash   = "cash"
	PaymentCredit = "credit"
	PaymentDebit  = "debit"
	PaymentPix    = "pix"
)

// CashSession represents one open→close cycle of a physical register drawer.
// Exactly one session may be open per drawer at a time; this is enforced by a
// partial unique index on (drawer) WHERE status = 'open', not only in code.
type CashSession struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Drawer       int             `gorm:"not null;index"`
	OpenedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	ClosedBy     *uuid.UUID      `gorm:"type:uuid"`
	OpeningFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ExpectedBalance is computed at close from the movement ledger:
	// opening + cash sales + supplies - withdrawals (cash tender only).
	ExpectedBalance *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CountedAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Discrepancy = counted - expected. Positive = overage, negative = shortage.
	Discrepancy *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status      string           `gorm:"type:varchar(20);not null;default:'open'"`
	Notes       *string
	OpenedAt    time.Time
	ClosedAt    *time.Time

	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// CashMovement is an immutable entry in the session ledger.
// Movements are NEVER updated or deleted — corrections are new compensating
// entries. Seq breaks CreatedAt ties so ledger order is stable.
type CashMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Seq           int64           `gorm:"autoIncrement;uniqueIndex"`
	SessionID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type          string          `gorm:"type:varchar(20);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description   string          `gorm:"not null"`
	// SaleID links sale movements to the originating Sale
	SaleID    *uuid.UUID `gorm:"type:uuid"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}
