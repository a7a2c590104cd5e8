package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name      string  `json:"name"       validate:"required,min=2,max=120"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Phone     *string `json:"phone"      validate:"omitempty,min=8,max=20"`
	CPF       *string `json:"cpf"        validate:"omitempty,len=11"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"      validate:"omitempty,len=2"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     *string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name      *string `json:"name"       validate:"omitempty,min=2,max=120"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Phone     *string `json:"phone"      validate:"omitempty,min=8,max=20"`
	CPF       *string `json:"cpf"        validate:"omitempty,len=11"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"      validate:"omitempty,len=2"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     *string `json:"notes"`
	Active    *bool   `json:"active"`
}

type CustomerFilter struct {
	Name  string `form:"name"`
	Email string `form:"email"`
	CPF   string `form:"cpf"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	CPF          *string         `json:"cpf"`
	Address      *string         `json:"address"`
	City         *string         `json:"city"`
	State        *string         `json:"state"`
	BirthDate    *string         `json:"birth_date"`
	Notes        *string         `json:"notes"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	LastPurchase *string         `json:"last_purchase"`
	Active       bool            `json:"active"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
