package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BundleComponentRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CreateProductRequest struct {
	SKU            string                   `json:"sku"             validate:"required,min=1,max=60"`
	Barcode        string                   `json:"barcode"         validate:"required,min=8,max=18"`
	Name           string                   `json:"name"            validate:"required,min=2,max=120"`
	Description    *string                  `json:"description"`
	CategoryID     *string                  `json:"category_id"     validate:"omitempty,uuid"`
	PriceCost      decimal.Decimal          `json:"price_cost"      validate:"required"`
	PriceSale      decimal.Decimal          `json:"price_sale"      validate:"required"`
	Stock          int                      `json:"stock"           validate:"min=0"`
	MinStock       int                      `json:"min_stock"       validate:"min=0"`
	Unit           string                   `json:"unit"`
	CommissionRate *decimal.Decimal         `json:"commission_rate"`
	Kind           string                   `json:"kind"            validate:"omitempty,oneof=single bundle"`
	Components     []BundleComponentRequest `json:"components"      validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name           *string          `json:"name"            validate:"omitempty,min=2,max=120"`
	Description    *string          `json:"description"`
	CategoryID     *string          `json:"category_id"     validate:"omitempty,uuid"`
	PriceCost      *decimal.Decimal `json:"price_cost"`
	PriceSale      *decimal.Decimal `json:"price_sale"`
	MinStock       *int             `json:"min_stock"       validate:"omitempty,min=0"`
	Unit           *string          `json:"unit"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	Active         *bool            `json:"active"`
}

type SetPromotionRequest struct {
	PricePromotion decimal.Decimal `json:"price_promotion" validate:"required,gt=0"`
}

type AdjustStockRequest struct {
	// Delta is signed: negative takes stock out, positive puts stock in.
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Barcode    string `form:"barcode"`
	Name       string `form:"name"`
	CategoryID string `form:"category_id"`
	Kind       string `form:"kind"`
	Promotion  *bool  `form:"promotion"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BundleComponentResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type ProductResponse struct {
	ID             string                    `json:"id"`
	SKU            string                    `json:"sku"`
	Barcode        string                    `json:"barcode"`
	Name           string                    `json:"name"`
	Description    *string                   `json:"description"`
	CategoryID     *string                   `json:"category_id"`
	CategoryName   *string                   `json:"category_name"`
	PriceCost      decimal.Decimal           `json:"price_cost"`
	PriceSale      decimal.Decimal           `json:"price_sale"`
	IsPromotion    bool                      `json:"is_promotion"`
	PricePromotion *decimal.Decimal          `json:"price_promotion"`
	EffectivePrice decimal.Decimal           `json:"effective_price"`
	MarginPct      decimal.Decimal           `json:"margin_pct"`
	Stock          int                       `json:"stock"`
	MinStock       int                       `json:"min_stock"`
	Unit           string                    `json:"unit"`
	ImageURL       *string                   `json:"image_url"`
	Kind           string                    `json:"kind"`
	Active         bool                      `json:"active"`
	Components     []BundleComponentResponse `json:"components,omitempty"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// BarcodeLookupResponse is the redis-cached payload the POS scanner hits.
type BarcodeLookupResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	IsPromotion    bool            `json:"is_promotion"`
	Stock          int             `json:"stock"`
	Kind           string          `json:"kind"`
}

type PriceHistoryResponse struct {
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	ChangedBy *string         `json:"changed_by"`
	CreatedAt string          `json:"created_at"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"reference_id"`
	CreatedAt   string  `json:"created_at"`
}
