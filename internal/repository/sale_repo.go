package repository

import (
	"context"
	"time"

	"makepri/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	Update(ctx context.Context, s *model.Sale) error
	// MarkCancelledTx flips the sale to cancelled with a conditional write
	// guarded by status <> cancelled. It reports whether this transaction won
	// the claim; a false return means another cancel already went through and
	// the caller must roll back its side effects.
	MarkCancelledTx(tx *gorm.DB, id uuid.UUID, reason string) (bool, error)
	// ListPendingReceipts feeds the retry cron: pending receipts whose
	// next_retry_at is due.
	ListPendingReceipts(ctx context.Context, now time.Time, limit int) ([]model.Sale, error)
	DB() *gorm.DB
}

// SaleFilter narrows the sales listing.
type SaleFilter struct {
	From      *time.Time
	To        *time.Time
	Status    string
	SellerID  *uuid.UUID
	SessionID *uuid.UUID
	Page      int
	Limit     int
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(_ context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) NextTicketNumber(_ context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Raw("SELECT nextval('sale_ticket_seq')").Scan(&n).Error
	return n, err
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SellerID != nil {
		q = q.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.SessionID != nil {
		q = q.Where("session_id = ?", *filter.SessionID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var sales []model.Sale
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) Update(ctx context.Context, s *model.Sale) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *saleRepo) MarkCancelledTx(tx *gorm.DB, id uuid.UUID, reason string) (bool, error) {
	res := tx.Model(&model.Sale{}).
		Where("id = ? AND status <> ?", id, model.SaleCancelled).
		Updates(map[string]interface{}{
			"status":        model.SaleCancelled,
			"cancel_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *saleRepo) ListPendingReceipts(ctx context.Context, now time.Time, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("receipt_status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.ReceiptPending, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}
