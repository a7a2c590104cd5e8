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
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		CPF:     req.CPF,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Notes:   req.Notes,
		Active:  true,
	}
	if req.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("invalid birth_date: %w", err)
		}
		c.BirthDate = &bd
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("customer not found")
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	search := filter.Name
	if search == "" {
		search = filter.Email
	}
	if search == "" {
		search = filter.CPF
	}
	customers, total, err := s.repo.List(ctx, search, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		data = append(data, customerToResponse(&customers[i]))
	}
	return &dto.CustomerListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("customer not found")
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.CPF != nil {
		c.CPF = req.CPF
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.City != nil {
		c.City = req.City
	}
	if req.State != nil {
		c.State = req.State
	}
	if req.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("invalid birth_date: %w", err)
		}
		c.BirthDate = &bd
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func customerToResponse(c *model.Customer) dto.CustomerResponse {
	resp := dto.CustomerResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		CPF:        c.CPF,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		Notes:      c.Notes,
		TotalSpent: c.TotalSpent,
		Active:     c.Active,
	}
	if c.BirthDate != nil {
		bd := c.BirthDate.Format("2006-01-02")
		resp.BirthDate = &bd
	}
	if c.LastPurchase != nil {
		lp := c.LastPurchase.UTC().Format(time.RFC3339)
		resp.LastPurchase = &lp
	}
	return resp
}
