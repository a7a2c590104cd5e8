package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product covers both simple products and bundles (kits/combos).
// Kind="bundle" means stock lives in the components, linked via BundleComponent.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Barcode     string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	PriceCost   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PriceSale   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Promotion price applies instead of PriceSale while IsPromotion is set
	IsPromotion    bool             `gorm:"not null;default:false"`
	PricePromotion *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CommissionRate *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Stock          int              `gorm:"not null;default:0"`
	MinStock       int              `gorm:"not null;default:5"`
	Unit           string           `gorm:"not null;default:'un'"`
	ImageURL       *string
	Kind           string `gorm:"type:varchar(10);not null;default:'single'"` // single | bundle
	Active         bool   `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Category   *Category         `gorm:"foreignKey:CategoryID"`
	Components []BundleComponent `gorm:"foreignKey:BundleID"`
}

// EffectivePrice returns the price the POS charges right now.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.IsPromotion && p.PricePromotion != nil {
		return *p.PricePromotion
	}
	return p.PriceSale
}

// BundleComponent links a bundle product to one of its component products.
type BundleComponent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BundleID  uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_bundle_component"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bundle_component"`
	Quantity  int       `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Category groups products for catalog filtering.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
