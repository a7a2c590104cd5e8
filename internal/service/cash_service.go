package service

import (
	"context"
	"fmt"
	"time"

	"makepri/internal/dto"
	"makepri/internal/model"
	"makepri/internal/repository"
	"makepri/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*dto.CashSessionResponse, error)
	RegisterMovement(ctx context.Context, userID uuid.UUID, req dto.CashMovementRequest) (*dto.CashSessionResponse, error)
	Close(ctx context.Context, userID uuid.UUID, req dto.CloseSessionRequest) (*dto.CashSessionResponse, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.CashSessionResponse, error)
	Active(ctx context.Context, drawer int) (*dto.CashSessionResponse, error)
	SuggestedFloat(ctx context.Context, drawer int) (*dto.SuggestedFloatResponse, error)
	ListSessions(ctx context.Context, page, limit int) (*dto.CashSessionListResponse, error)
	// RequireOpen is called by SaleService to validate an open session before
	// registering a sale.
	RequireOpen(ctx context.Context, sessionID uuid.UUID) (*model.CashSession, error)
}

type cashService struct {
	repo       repository.CashRepository
	dispatcher *worker.Dispatcher
}

func NewCashService(repo repository.CashRepository, dispatcher *worker.Dispatcher) CashService {
	return &cashService{repo: repo, dispatcher: dispatcher}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *cashService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*dto.CashSessionResponse, error) {
	// Zero is fine (empty drawer); negative never is.
	if req.OpeningFloat.IsNegative() {
		return nil, model.ErrInvalidAmount
	}

	session := &model.CashSession{
		Drawer:       req.Drawer,
		OpenedBy:     userID,
		OpeningFloat: req.OpeningFloat,
		Status:       model.CashSessionOpen,
		OpenedAt:     time.Now().UTC(),
	}
	opening := &model.CashMovement{
		Type:          model.MovementOpening,
		PaymentMethod: model.PaymentCash,
		Amount:        req.OpeningFloat,
		Description:   fmt.Sprintf("Opening float, drawer %d", req.Drawer),
		CreatedBy:     &userID,
	}

	// The partial unique index turns a concurrent duplicate open into
	// ErrSessionAlreadyOpen — no pre-check read, no race window.
	if err := s.repo.CreateSession(ctx, session, opening); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, session, false)
}

// ── RegisterMovement ──────────────────────────────────────────────────────────
// Manual withdrawal (sangria) or supply (suprimento). Movements are immutable;
// there is no update or delete path.

func (s *cashService) RegisterMovement(ctx context.Context, userID uuid.UUID, req dto.CashMovementRequest) (*dto.CashSessionResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session_id: %w", err)
	}
	if !req.Amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}
	if req.Description == "" {
		return nil, model.ErrMissingDescription
	}

	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCash
	}

	// A cash withdrawal larger than what should be in the drawer is suspect
	// but legal (the expected balance may itself be wrong). Surface it once;
	// accept on explicit confirmation.
	if req.Type == model.MovementWithdrawal && method == model.PaymentCash && !req.Confirm {
		totals, err := s.computeTotals(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if req.Amount.GreaterThan(totals.ExpectedDrawerBalance) {
			return nil, model.ErrWithdrawalExceedsBalance
		}
	}

	mov := &model.CashMovement{
		SessionID:     sessionID,
		Type:          req.Type,
		PaymentMethod: method,
		Amount:        req.Amount,
		Description:   req.Description,
		CreatedBy:     &userID,
	}
	if err := s.repo.AppendMovement(ctx, mov); err != nil {
		return nil, err
	}

	return s.GetSession(ctx, sessionID)
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Blind count: the caller declares the counted amount without seeing the
// expected balance first. A discrepancy is recorded, never rejected — the
// drawer is closed with whatever was counted.

func (s *cashService) Close(ctx context.Context, userID uuid.UUID, req dto.CloseSessionRequest) (*dto.CashSessionResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session_id: %w", err)
	}
	if req.CountedAmount.IsNegative() {
		return nil, model.ErrInvalidAmount
	}

	// The whole close runs in one transaction holding the session row lock:
	// the ledger sum and the closing write see the same ledger, and a
	// movement append in flight either lands before the lock (counted in the
	// totals) or blocks until the close commits and then fails its open
	// check. The conditional write stays as a second guard against losing a
	// close race.
	var session *model.CashSession
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sess, err := s.repo.LockOpenSessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		sums, err := s.repo.SumMovementsTx(tx, sessionID)
		if err != nil {
			return err
		}

		expected := totalsFromSums(sums).ExpectedDrawerBalance
		counted := req.CountedAmount
		discrepancy := counted.Sub(expected)
		now := time.Now().UTC()

		sess.ExpectedBalance = &expected
		sess.CountedAmount = &counted
		sess.Discrepancy = &discrepancy
		sess.ClosedBy = &userID
		sess.ClosedAt = &now
		sess.Notes = req.Notes

		if err := s.repo.CloseSessionTx(tx, sess); err != nil {
			return err
		}
		sess.Status = model.CashSessionClosed
		session = sess
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async closing report for the back office. Best effort: the session is
	// closed either way, the retry cron picks up missed reports.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueCashReport(ctx, map[string]interface{}{
			"session_id": session.ID.String(),
		})
	}

	return s.buildResponse(ctx, session, true)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *cashService) GetSession(ctx context.Context, sessionID uuid.UUID) (*dto.CashSessionResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, session, true)
}

// Active returns the open session for a drawer, or ErrSessionNotFound when
// the drawer has no open session.
func (s *cashService) Active(ctx context.Context, drawer int) (*dto.CashSessionResponse, error) {
	session, err := s.repo.FindOpenByDrawer(ctx, drawer)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, model.ErrSessionNotFound
	}
	return s.buildResponse(ctx, session, false)
}

// SuggestedFloat proposes the counted amount of the drawer's last closed
// session as the next opening float. Advisory only.
func (s *cashService) SuggestedFloat(ctx context.Context, drawer int) (*dto.SuggestedFloatResponse, error) {
	last, err := s.repo.FindLastClosedByDrawer(ctx, drawer)
	if err != nil {
		return nil, err
	}
	suggested := decimal.Zero
	if last != nil && last.CountedAmount != nil {
		suggested = *last.CountedAmount
	}
	return &dto.SuggestedFloatResponse{Drawer: drawer, SuggestedFloat: suggested}, nil
}

func (s *cashService) ListSessions(ctx context.Context, page, limit int) (*dto.CashSessionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessions, total, err := s.repo.ListSessions(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CashSessionResponse, 0, len(sessions))
	for i := range sessions {
		resp, err := s.buildResponse(ctx, &sessions[i], false)
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}
	return &dto.CashSessionListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *cashService) RequireOpen(ctx context.Context, sessionID uuid.UUID) (*model.CashSession, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.CashSessionOpen {
		return nil, model.ErrSessionClosed
	}
	return session, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// computeTotals derives the reconciliation breakdown from the ledger. The
// session row stores no running balance; the ledger is the source of truth
// and the math is idempotent.
func (s *cashService) computeTotals(ctx context.Context, sessionID uuid.UUID) (*dto.CashTotals, error) {
	sums, err := s.repo.SumMovements(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return totalsFromSums(sums), nil
}

// totalsFromSums folds grouped ledger sums into the reconciliation breakdown.
func totalsFromSums(sums []repository.MovementSum) *dto.CashTotals {
	t := &dto.CashTotals{
		OpeningBalance:   decimal.Zero,
		CashSalesTotal:   decimal.Zero,
		CardSalesTotal:   decimal.Zero,
		PixSalesTotal:    decimal.Zero,
		WithdrawalsTotal: decimal.Zero,
		SuppliesTotal:    decimal.Zero,
	}
	for _, row := range sums {
		switch row.Type {
		case model.MovementOpening:
			t.OpeningBalance = t.OpeningBalance.Add(row.Total)
		case model.MovementSale:
			switch row.PaymentMethod {
			case model.PaymentCash:
				t.CashSalesTotal = t.CashSalesTotal.Add(row.Total)
			case model.PaymentCredit, model.PaymentDebit:
				t.CardSalesTotal = t.CardSalesTotal.Add(row.Total)
			case model.PaymentPix:
				t.PixSalesTotal = t.PixSalesTotal.Add(row.Total)
			}
		case model.MovementWithdrawal:
			// Non-cash withdrawals (acquirer reversals from cancelled card
			// sales) never touched the drawer; they stay in the ledger only.
			if row.PaymentMethod == model.PaymentCash {
				t.WithdrawalsTotal = t.WithdrawalsTotal.Add(row.Total)
			}
		case model.MovementSupply:
			if row.PaymentMethod == model.PaymentCash {
				t.SuppliesTotal = t.SuppliesTotal.Add(row.Total)
			}
		}
	}

	t.TotalSales = t.CashSalesTotal.Add(t.CardSalesTotal).Add(t.PixSalesTotal)
	// Only cash tender lives in the physical drawer.
	t.ExpectedDrawerBalance = t.OpeningBalance.
		Add(t.CashSalesTotal).
		Add(t.SuppliesTotal).
		Sub(t.WithdrawalsTotal)
	return t
}

func (s *cashService) buildResponse(ctx context.Context, session *model.CashSession, includeMovements bool) (*dto.CashSessionResponse, error) {
	totals, err := s.computeTotals(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CashSessionResponse{
		ID:            session.ID.String(),
		Drawer:        session.Drawer,
		Status:        session.Status,
		OpenedBy:      session.OpenedBy.String(),
		OpenedAt:      session.OpenedAt.UTC().Format(time.RFC3339),
		Totals:        *totals,
		CountedAmount: session.CountedAmount,
		Discrepancy:   session.Discrepancy,
		Notes:         session.Notes,
	}
	if session.ClosedBy != nil {
		id := session.ClosedBy.String()
		resp.ClosedBy = &id
	}
	if session.ClosedAt != nil {
		ts := session.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &ts
	}

	if includeMovements {
		movs := session.Movements
		if len(movs) == 0 {
			movs, err = s.repo.ListMovements(ctx, session.ID)
			if err != nil {
				return nil, err
			}
		}
		resp.Movements = make([]dto.CashMovementResponse, 0, len(movs))
		for _, m := range movs {
			resp.Movements = append(resp.Movements, dto.CashMovementResponse{
				ID:            m.ID.String(),
				Type:          m.Type,
				PaymentMethod: m.PaymentMethod,
				Amount:        m.Amount,
				Description:   m.Description,
				CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
	}

	return resp, nil
}
