package repository

import (
	"context"
	"time"

	"makepri/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FinanceRepository interface {
	Create(ctx context.Context, rec *model.FinancialRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialRecord, error)
	List(ctx context.Context, from, to *time.Time, recType string, page, limit int) ([]model.FinancialRecord, int64, error)
	Update(ctx context.Context, rec *model.FinancialRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SumByType totals paid records of one type inside the period.
	SumByType(ctx context.Context, recType string, from, to time.Time) (decimal.Decimal, error)
}

type financeRepo struct{ db *gorm.DB }

func NewFinanceRepository(db *gorm.DB) FinanceRepository { return &financeRepo{db: db} }

func (r *financeRepo) Create(ctx context.Context, rec *model.FinancialRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *financeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialRecord, error) {
	var rec model.FinancialRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *financeRepo) List(ctx context.Context, from, to *time.Time, recType string, page, limit int) ([]model.FinancialRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.FinancialRecord{})
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	if recType != "" {
		q = q.Where("type = ?", recType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var recs []model.FinancialRecord
	err := q.Order("date DESC").Offset((page - 1) * limit).Limit(limit).Find(&recs).Error
	return recs, total, err
}

func (r *financeRepo) Update(ctx context.Context, rec *model.FinancialRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *financeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FinancialRecord{}, "id = ?", id).Error
}

func (r *financeRepo) SumByType(ctx context.Context, recType string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.FinancialRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type = ? AND status = ? AND date >= ? AND date <= ?", recType, model.FinancePaid, from, to).
		Scan(&total).Error
	return total, err
}
