package service

import (
	"context"
	"errors"

	"makepri/internal/dto"
	"makepri/internal/model"
	"makepri/internal/repository"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo     repository.CategoryRepository
	products repository.ProductRepository
}

func NewCategoryService(repo repository.CategoryRepository, products repository.ProductRepository) CategoryService {
	return &categoryService{repo: repo, products: products}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	c := &model.Category{Name: req.Name, Active: true}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Active: c.Active}, nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoryResponse, 0, len(cats))
	for _, c := range cats {
		count, err := s.products.CountByCategory(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, dto.CategoryResponse{
			ID:           c.ID.String(),
			Name:         c.Name,
			Active:       c.Active,
			ProductCount: count,
		})
	}
	return resp, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("category not found")
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Active: c.Active}, nil
}

func (s *categoryService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}
