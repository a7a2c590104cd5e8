package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"makepri/internal/dto"
	"makepri/internal/model"
	"makepri/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales     map[uuid.UUID]*model.Sale
	ticketSeq int64
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now().UTC()
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.SessionID != nil && s.SessionID != *filter.SessionID {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSaleRepo) Update(_ context.Context, s *model.Sale) error {
	r.sales[s.ID] = s
	return nil
}

// MarkCancelledTx mimics the conditional UPDATE: an already-cancelled sale
// matches zero rows and the claim is reported lost.
func (r *fakeSaleRepo) MarkCancelledTx(_ *gorm.DB, id uuid.UUID, reason string) (bool, error) {
	s, ok := r.sales[id]
	if !ok {
		return false, errors.New("not found")
	}
	if s.Status == model.SaleCancelled {
		return false, nil
	}
	s.Status = model.SaleCancelled
	s.CancelReason = &reason
	return true, nil
}

func (r *fakeSaleRepo) ListPendingReceipts(_ context.Context, now time.Time, limit int) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.ReceiptStatus == model.ReceiptPending && s.NextRetryAt != nil && !s.NextRetryAt.After(now) {
			out = append(out, *s)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) DB() *gorm.DB { return nil }

func (r *fakeProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

// FindByIDTx returns a copy, like a fresh row read inside a transaction.
// Returning the stored pointer would let later stock writes corrupt the
// before-snapshot the inventory service takes.
func (r *fakeProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode && p.Active {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *fakeProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *fakeProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("not found")
	}
	if p.Stock+delta < 0 {
		return errors.New("insufficient stock")
	}
	p.Stock += delta
	return nil
}

func (r *fakeProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID && p.Active {
			n++
		}
	}
	return n, nil
}

type fakeStockMovementRepo struct {
	movements []model.StockMovement
}

func (r *fakeStockMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeStockMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID, _ int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeStockMovementRepo) List(_ context.Context, _, _ int) ([]model.StockMovement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, _ string, _, _ int) ([]model.Customer, int64, error) {
	return nil, 0, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) RegisterPurchaseTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal, at time.Time) error {
	c, ok := r.customers[id]
	if !ok {
		return errors.New("not found")
	}
	c.TotalSpent = c.TotalSpent.Add(amount)
	c.LastPurchase = &at
	return nil
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type saleFixture struct {
	svc       SaleService
	cashSvc   CashService
	cashRepo  *fakeCashRepo
	saleRepo  *fakeSaleRepo
	prodRepo  *fakeProductRepo
	stockRepo *fakeStockMovementRepo
	custRepo  *fakeCustomerRepo
	sessionID uuid.UUID
	sellerID  uuid.UUID
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	f := &saleFixture{
		cashRepo:  newFakeCashRepo(),
		saleRepo:  newFakeSaleRepo(),
		prodRepo:  newFakeProductRepo(),
		stockRepo: &fakeStockMovementRepo{},
		custRepo:  newFakeCustomerRepo(),
		sellerID:  uuid.New(),
	}
	f.cashSvc = NewCashService(f.cashRepo, nil)
	inventory := NewInventoryService(f.prodRepo, f.stockRepo)
	f.svc = NewSaleService(f.saleRepo, f.cashSvc, f.cashRepo, inventory, f.prodRepo, f.custRepo, nil)

	id, _ := openSession(t, f.cashSvc, 1, "100.00")
	f.sessionID = id
	return f
}

func (f *saleFixture) product(name, price string, stock int) *model.Product {
	return f.prodRepo.add(&model.Product{
		SKU:       "SKU-" + name,
		Barcode:   "790000000" + name,
		Name:      name,
		PriceCost: dec("1.00"),
		PriceSale: dec(price),
		Stock:     stock,
		MinStock:  2,
		Kind:      "single",
		Active:    true,
	})
}

func saleItems(products ...*model.Product) []dto.SaleItemRequest {
	items := make([]dto.SaleItemRequest, 0, len(products))
	for _, p := range products {
		items = append(items, dto.SaleItemRequest{ProductID: p.ID.String(), Quantity: 1})
	}
	return items
}

// ── RegisterSale ──────────────────────────────────────────────────────────────

func TestRegisterSale_CashWithChange(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	received := dec("20.00")
	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:      f.sessionID.String(),
		Items:          saleItems(p),
		PaymentMethod:  model.PaymentCash,
		AmountReceived: &received,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.TicketNumber)
	assert.True(t, resp.Total.Equal(dec("12.50")))
	require.NotNil(t, resp.ChangeAmount)
	assert.True(t, resp.ChangeAmount.Equal(dec("7.50")))
	assert.Equal(t, model.ReceiptSkipped, resp.ReceiptStatus)

	// Stock deducted and a matching ledger entry appended.
	assert.Equal(t, 9, p.Stock)
	session, err := f.cashSvc.GetSession(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.True(t, session.Totals.CashSalesTotal.Equal(dec("12.50")))
	assert.True(t, session.Totals.ExpectedDrawerBalance.Equal(dec("112.50")))
}

func TestRegisterSale_CashRequiresSufficientAmount(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	_, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentCash,
	})
	assert.ErrorContains(t, err, "amount_received")

	short := dec("10.00")
	_, err = f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:      f.sessionID.String(),
		Items:          saleItems(p),
		PaymentMethod:  model.PaymentCash,
		AmountReceived: &short,
	})
	assert.ErrorContains(t, err, "below the sale total")
}

func TestRegisterSale_CardDoesNotTouchDrawerBalance(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("headphones", "250.00", 5)

	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentCredit,
		Installments:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Installments)
	assert.Nil(t, resp.ChangeAmount)

	session, err := f.cashSvc.GetSession(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.True(t, session.Totals.CardSalesTotal.Equal(dec("250.00")))
	// Card money never enters the physical drawer.
	assert.True(t, session.Totals.ExpectedDrawerBalance.Equal(dec("100.00")))
}

func TestRegisterSale_InstallmentsOnlyForCredit(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	_, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentPix,
		Installments:  6,
	})
	assert.ErrorContains(t, err, "installments")
}

func TestRegisterSale_PromotionPriceSnapshot(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("chocolate", "10.00", 10)
	promo := dec("7.00")
	p.IsPromotion = true
	p.PricePromotion = &promo

	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentPix,
	})
	require.NoError(t, err)
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("7.00")))
	assert.True(t, resp.Total.Equal(dec("7.00")))
}

func TestRegisterSale_InactiveProductRejected(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("discontinued", "5.00", 10)
	p.Active = false

	_, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentPix,
	})
	assert.ErrorContains(t, err, "inactive")
}

func TestRegisterSale_ClosedSessionRejected(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	_, err := f.cashSvc.Close(context.Background(), f.sellerID, dto.CloseSessionRequest{
		SessionID: f.sessionID.String(), CountedAmount: dec("100.00"),
	})
	require.NoError(t, err)

	_, err = f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentPix,
	})
	assert.ErrorIs(t, err, model.ErrSessionClosed)
	// Nothing committed: no sale, no stock change.
	assert.Empty(t, f.saleRepo.sales)
	assert.Equal(t, 10, p.Stock)
}

func TestRegisterSale_BundleDeductsComponents(t *testing.T) {
	f := newSaleFixture(t)
	beer := f.product("beer", "8.00", 24)
	ice := f.product("ice", "5.00", 10)
	bundle := f.prodRepo.add(&model.Product{
		SKU:       "SKU-sixpack",
		Barcode:   "7900000000099",
		Name:      "sixpack+ice",
		PriceCost: dec("30.00"),
		PriceSale: dec("50.00"),
		Kind:      "bundle",
		Active:    true,
		Components: []model.BundleComponent{
			{ProductID: beer.ID, Quantity: 6},
			{ProductID: ice.ID, Quantity: 1},
		},
	})

	_, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(bundle),
		PaymentMethod: model.PaymentDebit,
	})
	require.NoError(t, err)
	assert.Equal(t, 18, beer.Stock)
	assert.Equal(t, 9, ice.Stock)
	// The bundle row itself carries no stock.
	assert.Equal(t, 0, bundle.Stock)
}

func TestRegisterSale_CustomerTotalsUpdated(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)
	customer := &model.Customer{Name: "Ana"}
	require.NoError(t, f.custRepo.Create(context.Background(), customer))

	cid := customer.ID.String()
	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentPix,
		CustomerID:    &cid,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.CustomerName)
	assert.Equal(t, "Ana", *resp.CustomerName)
	assert.True(t, customer.TotalSpent.Equal(dec("12.50")))
	require.NotNil(t, customer.LastPurchase)
}

func TestRegisterSale_ReceiptEmailMarksPending(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	email := "client@example.com"
	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentPix,
		ReceiptEmail:  &email,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptPending, resp.ReceiptStatus)

	saleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	stored := f.saleRepo.sales[saleID]
	require.NotNil(t, stored.NextRetryAt)

	// The pending receipt is visible to the retry cron immediately.
	due, err := f.saleRepo.ListPendingReceipts(context.Background(), time.Now().UTC().Add(time.Second), 10)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestRegisterSale_TicketNumbersAreSequential(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	first, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID: f.sessionID.String(), Items: saleItems(p), PaymentMethod: model.PaymentPix,
	})
	require.NoError(t, err)
	second, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID: f.sessionID.String(), Items: saleItems(p), PaymentMethod: model.PaymentPix,
	})
	require.NoError(t, err)
	assert.Equal(t, first.TicketNumber+1, second.TicketNumber)
}

// ── CancelSale ────────────────────────────────────────────────────────────────

func TestCancelSale_RestoresStockAndCompensatesLedger(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	received := dec("12.50")
	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:      f.sessionID.String(),
		Items:          saleItems(p),
		PaymentMethod:  model.PaymentCash,
		AmountReceived: &received,
	})
	require.NoError(t, err)
	require.Equal(t, 9, p.Stock)

	saleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelSale(context.Background(), saleID, f.sellerID, "customer gave up"))

	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, model.SaleCancelled, f.saleRepo.sales[saleID].Status)

	// Cash sale cancellation: a cash withdrawal brings the drawer back.
	session, err := f.cashSvc.GetSession(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.True(t, session.Totals.ExpectedDrawerBalance.Equal(dec("100.00")))
}

func TestCancelSale_CardCompensationStaysOutOfDrawer(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("headphones", "250.00", 5)

	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:     f.sessionID.String(),
		Items:         saleItems(p),
		PaymentMethod: model.PaymentCredit,
	})
	require.NoError(t, err)

	saleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelSale(context.Background(), saleID, f.sellerID, "card chargeback"))

	// The reversal is ledger-only: expected drawer cash is untouched.
	session, err := f.cashSvc.GetSession(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.True(t, session.Totals.ExpectedDrawerBalance.Equal(dec("100.00")))
	assert.True(t, session.Totals.WithdrawalsTotal.IsZero())
}

func TestCancelSale_AfterSessionCloseLeavesLedgerUntouched(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	received := dec("12.50")
	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID:      f.sessionID.String(),
		Items:          saleItems(p),
		PaymentMethod:  model.PaymentCash,
		AmountReceived: &received,
	})
	require.NoError(t, err)

	_, err = f.cashSvc.Close(context.Background(), f.sellerID, dto.CloseSessionRequest{
		SessionID: f.sessionID.String(), CountedAmount: dec("112.50"),
	})
	require.NoError(t, err)
	before := len(f.cashRepo.movements)

	// The cancel itself goes through: stock comes back and the sale flips to
	// cancelled. The reconciled ledger does not grow.
	saleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelSale(context.Background(), saleID, f.sellerID, "returned next day"))

	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, model.SaleCancelled, f.saleRepo.sales[saleID].Status)
	assert.Len(t, f.cashRepo.movements, before)

	session, err := f.cashSvc.GetSession(context.Background(), f.sessionID)
	require.NoError(t, err)
	require.NotNil(t, session.Discrepancy)
	assert.True(t, session.Discrepancy.IsZero())
}

func TestCancelSale_LosingClaimLeavesNoSideEffects(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID: f.sessionID.String(), Items: saleItems(p), PaymentMethod: model.PaymentPix,
	})
	require.NoError(t, err)
	saleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelSale(context.Background(), saleID, f.sellerID, "wrong item"))
	stockAfterFirst := p.Stock
	ledgerAfterFirst := len(f.cashRepo.movements)

	// A second cancel loses the claim before restoring stock or appending a
	// second compensation entry.
	err = f.svc.CancelSale(context.Background(), saleID, f.sellerID, "wrong item")
	assert.ErrorContains(t, err, "already cancelled")
	assert.Equal(t, stockAfterFirst, p.Stock)
	assert.Len(t, f.cashRepo.movements, ledgerAfterFirst)
}

func TestCancelSale_TwiceFails(t *testing.T) {
	f := newSaleFixture(t)
	p := f.product("soda", "12.50", 10)

	resp, err := f.svc.RegisterSale(context.Background(), f.sellerID, dto.RegisterSaleRequest{
		SessionID: f.sessionID.String(), Items: saleItems(p), PaymentMethod: model.PaymentPix,
	})
	require.NoError(t, err)

	saleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelSale(context.Background(), saleID, f.sellerID, "wrong item"))
	err = f.svc.CancelSale(context.Background(), saleID, f.sellerID, "wrong item")
	assert.ErrorContains(t, err, "already cancelled")
}
