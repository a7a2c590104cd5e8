package repository

import (
	"context"
	"errors"

	"makepri/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovementSum is one row of the grouped ledger aggregation.
type MovementSum struct {
	Type          string
	PaymentMethod string
	Total         decimal.Decimal
}

type CashRepository interface {
	// CreateSession inserts the session and its synthetic opening movement in
	// one transaction. The partial unique index on open sessions makes a
	// concurrent duplicate open fail with model.ErrSessionAlreadyOpen.
	CreateSession(ctx context.Context, s *model.CashSession, opening *model.CashMovement) error
	FindOpenByDrawer(ctx context.Context, drawer int) (*model.CashSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	// LockOpenSessionTx loads the session row FOR UPDATE and verifies it is
	// still open. The caller holds the lock until its transaction ends, which
	// serializes appends, closes and sale/cancel flows on the same session.
	LockOpenSessionTx(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	// CloseSessionTx persists all closing fields in a single conditional write
	// guarded by status='open'. Losing a close race yields ErrSessionClosed.
	CloseSessionTx(tx *gorm.DB, s *model.CashSession) error
	// AppendMovement re-checks the session is open under a row lock before
	// inserting, so a concurrent close cannot interleave.
	AppendMovement(ctx context.Context, m *model.CashMovement) error
	// AppendMovementTx inserts without the open check — for callers already
	// holding the session row inside their own transaction (sale flow).
	AppendMovementTx(tx *gorm.DB, m *model.CashMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)
	SumMovements(ctx context.Context, sessionID uuid.UUID) ([]MovementSum, error)
	SumMovementsTx(tx *gorm.DB, sessionID uuid.UUID) ([]MovementSum, error)
	FindLastClosedByDrawer(ctx context.Context, drawer int) (*model.CashSession, error)
	ListSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error)
	DB() *gorm.DB
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) DB() *gorm.DB { return r.db }

func (r *cashRepo) CreateSession(ctx context.Context, s *model.CashSession, opening *model.CashMovement) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		opening.SessionID = s.ID
		return tx.Create(opening).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrSessionAlreadyOpen
	}
	return err
}

func (r *cashRepo) FindOpenByDrawer(ctx context.Context, drawer int) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("drawer = ? AND status = ?", drawer, model.CashSessionOpen).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, seq ASC")
		}).
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashRepo) LockOpenSessionTx(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Status != model.CashSessionOpen {
		return nil, model.ErrSessionClosed
	}
	return &s, nil
}

func (r *cashRepo) CloseSessionTx(tx *gorm.DB, s *model.CashSession) error {
	res := tx.Model(&model.CashSession{}).
		Where("id = ? AND status = ?", s.ID, model.CashSessionOpen).
		Updates(map[string]interface{}{
			"status":           model.CashSessionClosed,
			"expected_balance": s.ExpectedBalance,
			"counted_amount":   s.CountedAmount,
			"discrepancy":      s.Discrepancy,
			"closed_by":        s.ClosedBy,
			"closed_at":        s.ClosedAt,
			"notes":            s.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrSessionClosed
	}
	return nil
}

func (r *cashRepo) AppendMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.LockOpenSessionTx(tx, m.SessionID); err != nil {
			return err
		}
		return tx.Create(m).Error
	})
}

func (r *cashRepo) AppendMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *cashRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, seq ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cashRepo) SumMovements(ctx context.Context, sessionID uuid.UUID) ([]MovementSum, error) {
	return r.SumMovementsTx(r.db.WithContext(ctx), sessionID)
}

func (r *cashRepo) SumMovementsTx(tx *gorm.DB, sessionID uuid.UUID) ([]MovementSum, error) {
	var sums []MovementSum
	err := tx.Model(&model.CashMovement{}).
		Select("type, payment_method, COALESCE(SUM(amount), 0) AS total").
		Where("session_id = ?", sessionID).
		Group("type, payment_method").
		Scan(&sums).Error
	return sums, err
}

func (r *cashRepo) FindLastClosedByDrawer(ctx context.Context, drawer int) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("drawer = ? AND status = ?", drawer, model.CashSessionClosed).
		Order("closed_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashRepo) ListSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CashSession{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("opened_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
