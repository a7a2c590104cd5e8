package repository

import (
	"context"
	"time"

	"makepri/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	Update(ctx context.Context, c *model.Customer) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// RegisterPurchaseTx bumps total_spent and last_purchase inside the sale
	// transaction so CRM totals never drift from committed sales.
	RegisterPurchaseTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal, at time.Time) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{}).Where("active = true")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like)
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

	var customers []model.Customer
	err := q.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Update("active", false).Error
}

func (r *customerRepo) RegisterPurchaseTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal, at time.Time) error {
	return tx.Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_spent":   gorm.Expr("total_spent + ?", amount),
			"last_purchase": at,
		}).Error
}
