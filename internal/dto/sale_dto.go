package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from query string of GET /v1/sales.
type SaleFilter struct {
	Date      string `form:"date"`                     // YYYY-MM-DD; empty = today
	Status    string `form:"status,default=completed"` // completed | cancelled | all
	SellerID  string `form:"seller_id"`
	SessionID string `form:"session_id"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	Discount  decimal.Decimal `json:"discount"   validate:"min=0"`
}

type RegisterSaleRequest struct {
	SessionID     string            `json:"session_id"     validate:"required,uuid"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash credit debit pix"`
	// Installments only makes sense for credit payments.
	Installments int `json:"installments" validate:"omitempty,min=1,max=12"`
	// AmountReceived is required for cash payments; change is computed server-side.
	AmountReceived *decimal.Decimal `json:"amount_received"`
	CustomerID     *string          `json:"customer_id"    validate:"omitempty,uuid"`
	// ReceiptEmail: when present, the receipt worker mails the PDF after the sale.
	ReceiptEmail *string `json:"receipt_email" validate:"omitempty,email"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	TicketNumber   int64              `json:"ticket_number"`
	SessionID      string             `json:"session_id"`
	SellerID       string             `json:"seller_id"`
	CustomerID     *string            `json:"customer_id"`
	CustomerName   *string            `json:"customer_name"`
	Items          []SaleItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountTotal  decimal.Decimal    `json:"discount_total"`
	Total          decimal.Decimal    `json:"total"`
	PaymentMethod  string             `json:"payment_method"`
	Installments   int                `json:"installments"`
	AmountReceived *decimal.Decimal   `json:"amount_received"`
	ChangeAmount   *decimal.Decimal   `json:"change_amount"`
	Status         string             `json:"status"`
	ReceiptStatus  string             `json:"receipt_status"`
	CreatedAt      string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
