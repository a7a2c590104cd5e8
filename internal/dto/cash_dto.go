package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	Drawer int `json:"drawer" validate:"required,min=1"`
	// Zero is a valid opening float — an empty drawer is a real thing.
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
}

type CashMovementRequest struct {
	SessionID     string          `json:"session_id"     validate:"required,uuid"`
	Type          string          `json:"type"           validate:"required,oneof=withdrawal supply"`
	Amount        decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cash credit debit pix"`
	Description   string          `json:"description"`
	// Confirm accepts a withdrawal larger than the expected cash balance.
	// Without it such a withdrawal is answered with a 409 so the UI can ask.
	Confirm bool `json:"confirm"`
}

type CloseSessionRequest struct {
	SessionID     string          `json:"session_id"     validate:"required,uuid"`
	CountedAmount decimal.Decimal `json:"counted_amount" validate:"min=0"`
	Notes         *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CashTotals is the reconciliation breakdown, always recomputed from the
// movement ledger. Only cash tender moves the physical drawer balance —
// card and pix sales are informational.
type CashTotals struct {
	OpeningBalance        decimal.Decimal `json:"opening_balance"`
	CashSalesTotal        decimal.Decimal `json:"cash_sales_total"`
	CardSalesTotal        decimal.Decimal `json:"card_sales_total"`
	PixSalesTotal         decimal.Decimal `json:"pix_sales_total"`
	WithdrawalsTotal      decimal.Decimal `json:"withdrawals_total"`
	SuppliesTotal         decimal.Decimal `json:"supplies_total"`
	TotalSales            decimal.Decimal `json:"total_sales"`
	ExpectedDrawerBalance decimal.Decimal `json:"expected_drawer_balance"`
}

type CashMovementResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     string          `json:"created_at"`
}

type CashSessionResponse struct {
	ID            string                 `json:"id"`
	Drawer        int                    `json:"drawer"`
	Status        string                 `json:"status"`
	OpenedBy      string                 `json:"opened_by"`
	ClosedBy      *string                `json:"closed_by,omitempty"`
	OpenedAt      string                 `json:"opened_at"`
	ClosedAt      *string                `json:"closed_at,omitempty"`
	Totals        CashTotals             `json:"totals"`
	CountedAmount *decimal.Decimal       `json:"counted_amount,omitempty"`
	Discrepancy   *decimal.Decimal       `json:"discrepancy,omitempty"`
	Notes         *string                `json:"notes,omitempty"`
	Movements     []CashMovementResponse `json:"movements,omitempty"`
}

type SuggestedFloatResponse struct {
	Drawer int `json:"drawer"`
	// Last closed session's counted amount; zero when no history exists.
	SuggestedFloat decimal.Decimal `json:"suggested_float"`
}

type CashSessionListResponse struct {
	Data  []CashSessionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
