package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"makepri/internal/dto"
	"makepri/internal/model"
	"makepri/internal/repository"

	"github.com/google/uuid"
)

type FinanceService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateFinanceRecordRequest) (*dto.FinanceRecordResponse, error)
	List(ctx context.Context, filter dto.FinanceFilter) (*dto.FinanceListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateFinanceRecordRequest) (*dto.FinanceRecordResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type financeService struct {
	repo repository.FinanceRepository
}

func NewFinanceService(repo repository.FinanceRepository) FinanceService {
	return &financeService{repo: repo}
}

func (s *financeService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateFinanceRecordRequest) (*dto.FinanceRecordResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	status := req.Status
	if status == "" {
		status = model.FinancePending
	}
	rec := &model.FinancialRecord{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Status:      status,
		Date:        date,
		CreatedBy:   &userID,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	resp := financeToResponse(rec)
	return &resp, nil
}

func (s *financeService) List(ctx context.Context, filter dto.FinanceFilter) (*dto.FinanceListResponse, error) {
	var from, to *time.Time
	if filter.From != "" {
		t, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
		from = &t
	}
	if filter.To != "" {
		t, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
		end := t.Add(24*time.Hour - time.Second)
		to = &end
	}

	recs, total, err := s.repo.List(ctx, from, to, filter.Type, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	// Summary always spans the requested period, not the page.
	sumFrom := time.Time{}
	sumTo := time.Now().UTC().Add(24 * time.Hour)
	if from != nil {
		sumFrom = *from
	}
	if to != nil {
		sumTo = *to
	}
	income, err := s.repo.SumByType(ctx, model.FinanceIncome, sumFrom, sumTo)
	if err != nil {
		return nil, err
	}
	expense, err := s.repo.SumByType(ctx, model.FinanceExpense, sumFrom, sumTo)
	if err != nil {
		return nil, err
	}

	data := make([]dto.FinanceRecordResponse, 0, len(recs))
	for i := range recs {
		rec := financeToResponse(&recs[i])
		data = append(data, rec)
	}
	return &dto.FinanceListResponse{
		Data: data,
		Summary: dto.FinanceSummaryResponse{
			IncomeTotal:  income,
			ExpenseTotal: expense,
			Balance:      income.Sub(expense),
		},
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *financeService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateFinanceRecordRequest) (*dto.FinanceRecordResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("record not found")
	}
	if req.Description != nil {
		rec.Description = *req.Description
	}
	if req.Amount != nil {
		rec.Amount = *req.Amount
	}
	if req.Category != nil {
		rec.Category = *req.Category
	}
	if req.Status != nil {
		rec.Status = *req.Status
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		rec.Date = date
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	resp := financeToResponse(rec)
	return &resp, nil
}

func (s *financeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func financeToResponse(rec *model.FinancialRecord) dto.FinanceRecordResponse {
	return dto.FinanceRecordResponse{
		ID:          rec.ID.String(),
		Description: rec.Description,
		Amount:      rec.Amount,
		Type:        rec.Type,
		Category:    rec.Category,
		Status:      rec.Status,
		Date:        rec.Date.Format("2006-01-02"),
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}
