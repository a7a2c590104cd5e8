package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SaleCompleted = "completed"
	SaleCancelled = "cancelled"

	ReceiptPending = "pending"
	ReceiptSent    = "sent"
	ReceiptError   = "error"
	ReceiptSkipped = "skipped" // no customer email — nothing to deliver
)

// Sale is a completed POS checkout. Cancelling a sale never rewrites the cash
// ledger — a compensating withdrawal movement is appended instead.
type Sale struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber int64      `gorm:"uniqueIndex;not null"`
	SessionID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	SellerID     uuid.UUID  `gorm:"type:uuid;not null"`
	CustomerID   *uuid.UUID `gorm:"type:uuid;index"`
	// Denormalized for receipts — customer rows may be edited later
	CustomerName  *string
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	// Installments only meaningful for credit payments
	Installments   int              `gorm:"not null;default:1"`
	AmountReceived *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ChangeAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status         string           `gorm:"type:varchar(20);not null;default:'completed'"`
	CancelReason   *string

	// Receipt delivery bookkeeping, driven by the worker pool + retry cron
	ReceiptEmail   *string
	ReceiptStatus  string `gorm:"type:varchar(20);not null;default:'skipped'"`
	ReceiptRetries int    `gorm:"not null;default:0"`
	NextRetryAt    *time.Time
	LastError      *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one line of a sale; UnitPrice snapshots the effective price at
// checkout time (promotions included).
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
