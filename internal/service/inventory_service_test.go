package service

import (
	"context"
	"testing"

	"makepri/internal/dto"
	"makepri/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryFixture() (*fakeProductRepo, *fakeStockMovementRepo, InventoryService) {
	prodRepo := newFakeProductRepo()
	stockRepo := &fakeStockMovementRepo{}
	return prodRepo, stockRepo, NewInventoryService(prodRepo, stockRepo)
}

func TestAdjustStock_RecordsBeforeAndAfter(t *testing.T) {
	prodRepo, stockRepo, svc := newInventoryFixture()
	p := prodRepo.add(&model.Product{
		SKU: "SKU-1", Barcode: "7900000000001", Name: "soda",
		PriceCost: dec("1.00"), PriceSale: dec("2.00"),
		Stock: 10, MinStock: 2, Kind: "single", Active: true,
	})

	resp, err := svc.AdjustStock(context.Background(), p.ID, uuid.New(), dto.AdjustStockRequest{
		Delta:  -4,
		Reason: "breakage on shelf",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
	assert.Equal(t, 10, resp.StockBefore)
	assert.Equal(t, 6, resp.StockAfter)
	assert.Equal(t, "adjustment", resp.Type)

	require.Len(t, stockRepo.movements, 1)
	assert.Equal(t, "breakage on shelf", stockRepo.movements[0].Reason)
}

func TestAdjustStock_CannotGoNegative(t *testing.T) {
	prodRepo, _, svc := newInventoryFixture()
	p := prodRepo.add(&model.Product{
		SKU: "SKU-1", Barcode: "7900000000001", Name: "soda",
		PriceCost: dec("1.00"), PriceSale: dec("2.00"),
		Stock: 3, MinStock: 2, Kind: "single", Active: true,
	})

	_, err := svc.AdjustStock(context.Background(), p.ID, uuid.New(), dto.AdjustStockRequest{
		Delta:  -5,
		Reason: "inventory count",
	})
	require.Error(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestAdjustStock_BundleRejected(t *testing.T) {
	prodRepo, _, svc := newInventoryFixture()
	bundle := prodRepo.add(&model.Product{
		SKU: "SKU-kit", Barcode: "7900000000009", Name: "kit",
		PriceCost: dec("5.00"), PriceSale: dec("9.00"),
		Kind: "bundle", Active: true,
	})

	_, err := svc.AdjustStock(context.Background(), bundle.ID, uuid.New(), dto.AdjustStockRequest{
		Delta:  5,
		Reason: "restock",
	})
	assert.ErrorContains(t, err, "bundle")
}

func TestListLowStock_OnlyAtOrBelowMinimum(t *testing.T) {
	prodRepo, _, svc := newInventoryFixture()
	prodRepo.add(&model.Product{
		SKU: "SKU-low", Barcode: "7900000000002", Name: "low",
		PriceCost: dec("1.00"), PriceSale: dec("2.00"),
		Stock: 2, MinStock: 5, Kind: "single", Active: true,
	})
	prodRepo.add(&model.Product{
		SKU: "SKU-ok", Barcode: "7900000000003", Name: "plenty",
		PriceCost: dec("1.00"), PriceSale: dec("2.00"),
		Stock: 50, MinStock: 5, Kind: "single", Active: true,
	})

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "low", low[0].Name)
}
