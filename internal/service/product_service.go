package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"makepri/internal/dto"
	"makepri/internal/infra"
	"makepri/internal/model"
	"makepri/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// barcodeCacheTTL bounds how stale the POS scanner payload can get. Writes
// invalidate eagerly; the TTL only covers invalidation misses.
const barcodeCacheTTL = 5 * time.Minute

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// LookupBarcode serves the POS scanner; responses come from Redis when warm.
	LookupBarcode(ctx context.Context, barcode string) (*dto.BarcodeLookupResponse, error)

	SetPromotion(ctx context.Context, id uuid.UUID, userID uuid.UUID, req dto.SetPromotionRequest) (*dto.ProductResponse, error)
	ClearPromotion(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)

	UploadImage(ctx context.Context, id uuid.UUID, fileName string, content io.Reader) (*dto.ProductResponse, error)

	PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error)
}

type productService struct {
	repo        repository.ProductRepository
	historyRepo repository.PriceHistoryRepository
	rdb         *redis.Client
	images      *infra.ImageClient
}

func NewProductService(
	repo repository.ProductRepository,
	historyRepo repository.PriceHistoryRepository,
	rdb *redis.Client,
	images *infra.ImageClient,
) ProductService {
	return &productService{repo: repo, historyRepo: historyRepo, rdb: rdb, images: images}
}

// ── CRUD ──────────────────────────────────────────────────────────────────────

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	kind := req.Kind
	if kind == "" {
		kind = "single"
	}
	if kind == "bundle" && len(req.Components) == 0 {
		return nil, errors.New("a bundle requires at least one component")
	}
	if kind == "single" && len(req.Components) > 0 {
		return nil, errors.New("components are only valid for bundles")
	}

	unit := req.Unit
	if unit == "" {
		unit = "un"
	}

	p := &model.Product{
		SKU:            req.SKU,
		Barcode:        req.Barcode,
		Name:           req.Name,
		Description:    req.Description,
		PriceCost:      req.PriceCost,
		PriceSale:      req.PriceSale,
		Stock:          req.Stock,
		MinStock:       req.MinStock,
		Unit:           unit,
		CommissionRate: req.CommissionRate,
		Kind:           kind,
		Active:         true,
	}
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %w", err)
		}
		p.CategoryID = &cid
	}
	for _, c := range req.Components {
		pid, err := uuid.Parse(c.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid component product_id: %w", err)
		}
		p.Components = append(p.Components, model.BundleComponent{
			ProductID: pid,
			Quantity:  c.Quantity,
		})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, p.ID)
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	repoFilter := repository.ProductFilter{
		Search: filter.Name,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.Barcode != "" {
		repoFilter.Search = filter.Barcode
	}
	if filter.CategoryID != "" {
		cid, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %w", err)
		}
		repoFilter.CategoryID = &cid
	}

	products, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, productToResponse(&products[i]))
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &dto.ProductListResponse{
		Data: data, Total: total, Page: filter.Page, Limit: limit, TotalPages: totalPages,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %w", err)
		}
		p.CategoryID = &cid
	}
	if req.PriceCost != nil {
		p.PriceCost = *req.PriceCost
	}
	if req.PriceSale != nil && !req.PriceSale.Equal(p.PriceSale) {
		s.recordPriceChange(ctx, p, *req.PriceSale, userID)
		p.PriceSale = *req.PriceSale
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.CommissionRate != nil {
		p.CommissionRate = req.CommissionRate
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateBarcode(ctx, p.Barcode)
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("product not found")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateBarcode(ctx, p.Barcode)
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivate(ctx, id)
}

// ── Barcode lookup ────────────────────────────────────────────────────────────

func barcodeCacheKey(barcode string) string { return "barcode:" + barcode }

func (s *productService) LookupBarcode(ctx context.Context, barcode string) (*dto.BarcodeLookupResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, barcodeCacheKey(barcode)).Result(); err == nil {
			var resp dto.BarcodeLookupResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, errors.New("product not found")
	}

	resp := &dto.BarcodeLookupResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		EffectivePrice: p.EffectivePrice(),
		IsPromotion:    p.IsPromotion,
		Stock:          p.Stock,
		Kind:           p.Kind,
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, barcodeCacheKey(barcode), data, barcodeCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("barcode", barcode).Msg("barcode cache set failed")
			}
		}
	}
	return resp, nil
}

func (s *productService) invalidateBarcode(ctx context.Context, barcode string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, barcodeCacheKey(barcode)).Err(); err != nil {
		log.Warn().Err(err).Str("barcode", barcode).Msg("barcode cache invalidation failed")
	}
}

// ── Promotions ────────────────────────────────────────────────────────────────

func (s *productService) SetPromotion(ctx context.Context, id uuid.UUID, userID uuid.UUID, req dto.SetPromotionRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	if req.PricePromotion.GreaterThanOrEqual(p.PriceSale) {
		return nil, errors.New("promotion price must be below the sale price")
	}

	price := req.PricePromotion
	p.IsPromotion = true
	p.PricePromotion = &price
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateBarcode(ctx, p.Barcode)
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) ClearPromotion(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	p.IsPromotion = false
	p.PricePromotion = nil
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateBarcode(ctx, p.Barcode)
	resp := productToResponse(p)
	return &resp, nil
}

// ── Image upload ──────────────────────────────────────────────────────────────

func (s *productService) UploadImage(ctx context.Context, id uuid.UUID, fileName string, content io.Reader) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	url, err := s.images.Upload(ctx, fileName, content)
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}

	// Replace, keep storage tidy. Best effort on the old object.
	if p.ImageURL != nil && *p.ImageURL != "" {
		if err := s.images.Delete(ctx, *p.ImageURL); err != nil {
			log.Warn().Err(err).Str("url", *p.ImageURL).Msg("old image delete failed")
		}
	}

	p.ImageURL = &url
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

// ── Price history ─────────────────────────────────────────────────────────────

func (s *productService) PriceHistory(ctx context.Context, id uuid.UUID) ([]dto.PriceHistoryResponse, error) {
	history, err := s.historyRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PriceHistoryResponse, 0, len(history))
	for _, h := range history {
		item := dto.PriceHistoryResponse{
			OldPrice:  h.OldPrice,
			NewPrice:  h.NewPrice,
			CreatedAt: h.CreatedAt.UTC().Format(time.RFC3339),
		}
		if h.ChangedBy != nil {
			id := h.ChangedBy.String()
			item.ChangedBy = &id
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *productService) recordPriceChange(ctx context.Context, p *model.Product, newPrice decimal.Decimal, userID uuid.UUID) {
	entry := &model.PriceHistory{
		ProductID: p.ID,
		OldPrice:  p.PriceSale,
		NewPrice:  newPrice,
		ChangedBy: &userID,
	}
	// History is an audit convenience; a failed insert must not block the
	// price change itself.
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("product_id", p.ID.String()).Msg("price history insert failed")
	}
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func productToResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:             p.ID.String(),
		SKU:            p.SKU,
		Barcode:        p.Barcode,
		Name:           p.Name,
		Description:    p.Description,
		PriceCost:      p.PriceCost,
		PriceSale:      p.PriceSale,
		IsPromotion:    p.IsPromotion,
		PricePromotion: p.PricePromotion,
		EffectivePrice: p.EffectivePrice(),
		Stock:          p.Stock,
		MinStock:       p.MinStock,
		Unit:           p.Unit,
		ImageURL:       p.ImageURL,
		Kind:           p.Kind,
		Active:         p.Active,
	}
	if !p.PriceCost.IsZero() {
		resp.MarginPct = p.PriceSale.Sub(p.PriceCost).
			Div(p.PriceCost).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	if p.CategoryID != nil {
		cid := p.CategoryID.String()
		resp.CategoryID = &cid
	}
	if p.Category != nil {
		resp.CategoryName = &p.Category.Name
	}
	for _, c := range p.Components {
		comp := dto.BundleComponentResponse{
			ProductID: c.ProductID.String(),
			Quantity:  c.Quantity,
		}
		if c.Product != nil {
			comp.Name = c.Product.Name
		}
		resp.Components = append(resp.Components, comp)
	}
	return resp
}
