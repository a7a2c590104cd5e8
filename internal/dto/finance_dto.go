package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateFinanceRecordRequest struct {
	Description string          `json:"description" validate:"required,min=3,max=200"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Type        string          `json:"type"        validate:"required,oneof=income expense"`
	Category    string          `json:"category"    validate:"required,min=2,max=60"`
	Status      string          `json:"status"      validate:"omitempty,oneof=paid pending"`
	Date        string          `json:"date"        validate:"required,datetime=2006-01-02"`
}

type UpdateFinanceRecordRequest struct {
	Description *string          `json:"description" validate:"omitempty,min=3,max=200"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"    validate:"omitempty,min=2,max=60"`
	Status      *string          `json:"status"      validate:"omitempty,oneof=paid pending"`
	Date        *string          `json:"date"        validate:"omitempty,datetime=2006-01-02"`
}

type FinanceFilter struct {
	Type     string `form:"type"     validate:"omitempty,oneof=income expense"`
	Status   string `form:"status"   validate:"omitempty,oneof=paid pending"`
	Category string `form:"category"`
	From     string `form:"from"     validate:"omitempty,datetime=2006-01-02"`
	To       string `form:"to"       validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FinanceRecordResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Date        string          `json:"date"`
	CreatedAt   string          `json:"created_at"`
}

type FinanceSummaryResponse struct {
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	Balance      decimal.Decimal `json:"balance"`
}

type FinanceListResponse struct {
	Data    []FinanceRecordResponse `json:"data"`
	Summary FinanceSummaryResponse  `json:"summary"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
}
