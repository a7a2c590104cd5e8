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
	"gorm.io/gorm"
)

// InventoryService owns stock changes and the stock audit trail. All writes go
// through AdjustStockTx so every change leaves a StockMovement behind.
type InventoryService interface {
	AdjustStock(ctx context.Context, productID uuid.UUID, userID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error)
	ListLowStock(ctx context.Context) ([]dto.ProductResponse, error)
	ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]dto.StockMovementResponse, error)

	// DeductForSaleTx removes stock for a sold product inside the sale
	// transaction. Bundles deduct their components instead of themselves.
	DeductForSaleTx(tx *gorm.DB, productID uuid.UUID, quantity int, saleID uuid.UUID, ticket int64) error
	// RestoreForCancelTx puts the stock of a cancelled sale back.
	RestoreForCancelTx(tx *gorm.DB, productID uuid.UUID, quantity int, saleID uuid.UUID, ticket int64, reason string) error
}

type inventoryService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewInventoryService(products repository.ProductRepository, movements repository.StockMovementRepository) InventoryService {
	return &inventoryService{products: products, movements: movements}
}

// ── Manual adjustment ─────────────────────────────────────────────────────────

func (s *inventoryService) AdjustStock(ctx context.Context, productID uuid.UUID, userID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, errors.New("product not found")
	}
	if p.Kind == "bundle" {
		return nil, errors.New("bundles have no stock of their own; adjust the components")
	}

	var mov *model.StockMovement
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		before, err := s.products.FindByIDTx(tx, productID)
		if err != nil {
			return err
		}
		if err := s.products.AdjustStockTx(tx, productID, req.Delta); err != nil {
			return err
		}
		mov = &model.StockMovement{
			ProductID:   productID,
			Type:        "adjustment",
			Quantity:    req.Delta,
			StockBefore: before.Stock,
			StockAfter:  before.Stock + req.Delta,
			Reason:      req.Reason,
			CreatedBy:   &userID,
		}
		return s.movements.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := stockMovementToResponse(mov)
	return &resp, nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]dto.StockMovementResponse, error) {
	movs, err := s.movements.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StockMovementResponse, 0, len(movs))
	for i := range movs {
		resp = append(resp, stockMovementToResponse(&movs[i]))
	}
	return resp, nil
}

// ── Sale-flow stock handling ──────────────────────────────────────────────────

func (s *inventoryService) DeductForSaleTx(tx *gorm.DB, productID uuid.UUID, quantity int, saleID uuid.UUID, ticket int64) error {
	p, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return fmt.Errorf("product %s not found", productID)
	}

	if p.Kind == "bundle" {
		// Stock lives in the components; the bundle row stays untouched.
		for _, c := range p.Components {
			if err := s.writeDeduction(tx, c.ProductID, c.Quantity*quantity, saleID,
				"bundle_sale", fmt.Sprintf("Sale #%d (bundle %s)", ticket, p.Name)); err != nil {
				return err
			}
		}
		return nil
	}
	return s.writeDeduction(tx, productID, quantity, saleID, "sale", fmt.Sprintf("Sale #%d", ticket))
}

func (s *inventoryService) RestoreForCancelTx(tx *gorm.DB, productID uuid.UUID, quantity int, saleID uuid.UUID, ticket int64, reason string) error {
	p, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return fmt.Errorf("product %s not found", productID)
	}

	motive := fmt.Sprintf("Cancelled sale #%d — %s", ticket, reason)
	if p.Kind == "bundle" {
		for _, c := range p.Components {
			if err := s.writeRestore(tx, c.ProductID, c.Quantity*quantity, saleID, motive); err != nil {
				return err
			}
		}
		return nil
	}
	return s.writeRestore(tx, productID, quantity, saleID, motive)
}

func (s *inventoryService) writeDeduction(tx *gorm.DB, productID uuid.UUID, quantity int, saleID uuid.UUID, movType, reason string) error {
	before, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return err
	}
	if err := s.products.AdjustStockTx(tx, productID, -quantity); err != nil {
		return fmt.Errorf("%s: %w", before.Name, err)
	}
	ref := saleID
	return s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		Type:        movType,
		Quantity:    -quantity,
		StockBefore: before.Stock,
		StockAfter:  before.Stock - quantity,
		Reason:      reason,
		ReferenceID: &ref,
	})
}

func (s *inventoryService) writeRestore(tx *gorm.DB, productID uuid.UUID, quantity int, saleID uuid.UUID, reason string) error {
	before, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		return err
	}
	if err := s.products.AdjustStockTx(tx, productID, quantity); err != nil {
		return err
	}
	ref := saleID
	return s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		Type:        "cancel",
		Quantity:    quantity,
		StockBefore: before.Stock,
		StockAfter:  before.Stock + quantity,
		Reason:      reason,
		ReferenceID: &ref,
	})
}

func stockMovementToResponse(m *model.StockMovement) dto.StockMovementResponse {
	resp := dto.StockMovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.ReferenceID != nil {
		id := m.ReferenceID.String()
		resp.ReferenceID = &id
	}
	return resp
}
