package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement is the audit trail for every stock change.
// Type: "sale" | "cancel" | "adjustment" | "bundle_sale"
// Quantity is signed: negative = stock out, positive = stock in.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Type        string    `gorm:"type:varchar(20);not null"`
	Quantity    int       `gorm:"not null"`
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reason      string    `gorm:"not null"`
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}
