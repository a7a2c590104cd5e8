package service

import (
	"context"
	"errors"
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

type SaleService interface {
	RegisterSale(ctx context.Context, sellerID uuid.UUID, req dto.RegisterSaleRequest) (*dto.SaleResponse, error)
	CancelSale(ctx context.Context, id uuid.UUID, userID uuid.UUID, reason string) error
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo       repository.SaleRepository
	cash       CashService
	cashRepo   repository.CashRepository
	inventory  InventoryService
	products   repository.ProductRepository
	customers  repository.CustomerRepository
	dispatcher *worker.Dispatcher
}

func NewSaleService(
	repo repository.SaleRepository,
	cash CashService,
	cashRepo repository.CashRepository,
	inventory InventoryService,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	dispatcher *worker.Dispatcher,
) SaleService {
	return &saleService{
		repo:       repo,
		cash:       cash,
		cashRepo:   cashRepo,
		inventory:  inventory,
		products:   products,
		customers:  customers,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegisterSale ──────────────────────────────────────────────────────────────
// One ACID transaction:
//   1. validate open session (re-checked under row lock inside the tx)
//   2. resolve products, snapshot effective prices, compute totals
//   3. validate payment (cash needs amount_received >= total)
//   4. nextval ticket, insert sale + items, deduct stock, append cash movement,
//      bump customer totals
//   5. commit, then dispatch the receipt job

func (s *saleService) RegisterSale(ctx context.Context, sellerID uuid.UUID, req dto.RegisterSaleRequest) (*dto.SaleResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session_id: %w", err)
	}

	// Pre-flight check; the authoritative check happens under lock in the tx.
	if _, err := s.cash.RequireOpen(ctx, sessionID); err != nil {
		return nil, err
	}

	// Resolve products and compute totals outside the tx.
	type resolvedItem struct {
		productID uuid.UUID
		name      string
		unitPrice decimal.Decimal
		quantity  int
		discount  decimal.Decimal
		subtotal  decimal.Decimal
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("product %s is inactive and cannot be sold", p.Name)
		}
		price := p.EffectivePrice()
		lineSubtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity))).Sub(item.Discount)
		if lineSubtotal.IsNegative() {
			return nil, fmt.Errorf("discount on %s exceeds the line total", p.Name)
		}
		subtotal = subtotal.Add(lineSubtotal)
		discountTotal = discountTotal.Add(item.Discount)
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			unitPrice: price,
			quantity:  item.Quantity,
			discount:  item.Discount,
			subtotal:  lineSubtotal,
		})
	}
	total := subtotal

	// Payment validation.
	installments := req.Installments
	if installments < 1 {
		installments = 1
	}
	if installments > 1 && req.PaymentMethod != model.PaymentCredit {
		return nil, errors.New("installments are only available for credit payments")
	}

	var change *decimal.Decimal
	if req.PaymentMethod == model.PaymentCash {
		if req.AmountReceived == nil {
			return nil, errors.New("amount_received is required for cash payments")
		}
		if req.AmountReceived.LessThan(total) {
			return nil, errors.New("amount received is below the sale total")
		}
		c := req.AmountReceived.Sub(total)
		change = &c
	}

	// Customer resolution (optional).
	var customerID *uuid.UUID
	var customerName *string
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		customer, err := s.customers.FindByID(ctx, cid)
		if err != nil {
			return nil, errors.New("customer not found")
		}
		customerID = &cid
		customerName = &customer.Name
	}

	receiptStatus := model.ReceiptSkipped
	if req.ReceiptEmail != nil && *req.ReceiptEmail != "" {
		receiptStatus = model.ReceiptPending
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Lock the session row and re-check status so a concurrent close
		// cannot slip a sale into a closed session.
		if _, err := s.cashRepo.LockOpenSessionTx(tx, sessionID); err != nil {
			return err
		}

		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sale = model.Sale{
			TicketNumber:   ticket,
			SessionID:      sessionID,
			SellerID:       sellerID,
			CustomerID:     customerID,
			CustomerName:   customerName,
			Subtotal:       subtotal,
			DiscountTotal:  discountTotal,
			Total:          total,
			PaymentMethod:  req.PaymentMethod,
			Installments:   installments,
			AmountReceived: req.AmountReceived,
			ChangeAmount:   change,
			Status:         model.SaleCompleted,
			ReceiptEmail:   req.ReceiptEmail,
			ReceiptStatus:  receiptStatus,
		}
		if receiptStatus == model.ReceiptPending {
			sale.NextRetryAt = &now
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				Discount:  r.discount,
				Subtotal:  r.subtotal,
			})
		}
		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		for _, r := range resolved {
			if err := s.inventory.DeductForSaleTx(tx, r.productID, r.quantity, sale.ID, ticket); err != nil {
				return err
			}
		}

		// One ledger entry per sale, tagged with the tender.
		mov := &model.CashMovement{
			SessionID:     sessionID,
			Type:          model.MovementSale,
			PaymentMethod: req.PaymentMethod,
			Amount:        total,
			Description:   fmt.Sprintf("Sale #%d", ticket),
			SaleID:        &sale.ID,
			CreatedBy:     &sellerID,
		}
		if err := s.cashRepo.AppendMovementTx(tx, mov); err != nil {
			return err
		}

		if customerID != nil {
			if err := s.customers.RegisterPurchaseTx(tx, *customerID, total, now); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Fire and forget: a failed enqueue is repaired by the retry cron, which
	// scans for pending receipts past next_retry_at.
	if s.dispatcher != nil && receiptStatus == model.ReceiptPending {
		_ = s.dispatcher.EnqueueReceipt(ctx, map[string]interface{}{
			"sale_id": sale.ID.String(),
		})
	}

	resp := saleToResponse(&sale)
	for i, r := range resolved {
		resp.Items[i].Product = r.name
	}
	return resp, nil
}

// ── CancelSale ────────────────────────────────────────────────────────────────
// The ledger is never rewritten: stock is restored and a compensating
// withdrawal movement is appended with the sale's tender. When the session has
// closed in the meantime the compensation is skipped entirely — a closed
// ledger never grows, and the discrepancy was already fixed at close time.

func (s *saleService) CancelSale(ctx context.Context, id uuid.UUID, userID uuid.UUID, reason string) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("sale not found")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Claim the cancel first. The conditional write matches zero rows
		// when another transaction already cancelled this sale, so a losing
		// concurrent cancel aborts here before touching stock or the ledger.
		claimed, err := s.repo.MarkCancelledTx(tx, sale.ID, reason)
		if err != nil {
			return err
		}
		if !claimed {
			return errors.New("sale is already cancelled")
		}

		for _, item := range sale.Items {
			if err := s.inventory.RestoreForCancelTx(tx, item.ProductID, item.Quantity, sale.ID, sale.TicketNumber, reason); err != nil {
				return err
			}
		}

		// The session row lock keeps a concurrent close from slipping the
		// compensation into an already-reconciled ledger.
		_, err = s.cashRepo.LockOpenSessionTx(tx, sale.SessionID)
		if errors.Is(err, model.ErrSessionClosed) {
			sale.Status = model.SaleCancelled
			sale.CancelReason = &reason
			return nil
		}
		if err != nil {
			return err
		}

		mov := &model.CashMovement{
			SessionID:     sale.SessionID,
			Type:          model.MovementWithdrawal,
			PaymentMethod: sale.PaymentMethod,
			Amount:        sale.Total,
			Description:   fmt.Sprintf("Cancelled sale #%d — %s", sale.TicketNumber, reason),
			SaleID:        &sale.ID,
			CreatedBy:     &userID,
		}
		if err := s.cashRepo.AppendMovementTx(tx, mov); err != nil {
			return err
		}

		sale.Status = model.SaleCancelled
		sale.CancelReason = &reason
		return nil
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("sale not found")
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = model.SaleCompleted
	}

	repoFilter := repository.SaleFilter{
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.Status != "all" {
		repoFilter.Status = filter.Status
	}
	if filter.SellerID != "" {
		sid, err := uuid.Parse(filter.SellerID)
		if err != nil {
			return nil, fmt.Errorf("invalid seller_id: %w", err)
		}
		repoFilter.SellerID = &sid
	}
	if filter.SessionID != "" {
		sid, err := uuid.Parse(filter.SessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid session_id: %w", err)
		}
		repoFilter.SessionID = &sid
	}

	// Default window: today. A session filter already bounds the result set,
	// so no date window is applied then unless one was asked for.
	if filter.SessionID == "" || filter.Date != "" {
		day := time.Now().UTC()
		if filter.Date != "" {
			parsed, err := time.Parse("2006-01-02", filter.Date)
			if err != nil {
				return nil, fmt.Errorf("invalid date: %w", err)
			}
			day = parsed
		}
		from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		to := from.Add(24 * time.Hour)
		repoFilter.From = &from
		repoFilter.To = &to
	}

	sales, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Subtotal:  item.Subtotal,
		})
	}
	resp := &dto.SaleResponse{
		ID:             v.ID.String(),
		TicketNumber:   v.TicketNumber,
		SessionID:      v.SessionID.String(),
		SellerID:       v.SellerID.String(),
		CustomerName:   v.CustomerName,
		Items:          items,
		Subtotal:       v.Subtotal,
		DiscountTotal:  v.DiscountTotal,
		Total:          v.Total,
		PaymentMethod:  v.PaymentMethod,
		Installments:   v.Installments,
		AmountReceived: v.AmountReceived,
		ChangeAmount:   v.ChangeAmount,
		Status:         v.Status,
		ReceiptStatus:  v.ReceiptStatus,
		CreatedAt:      v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.CustomerID != nil {
		id := v.CustomerID.String()
		resp.CustomerID = &id
	}
	return resp
}
