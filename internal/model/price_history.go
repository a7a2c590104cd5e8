package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory records every sale-price change of a product.
type PriceHistory struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	OldPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ChangedBy *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time
}
