package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
)

// CustomerRepository defines the interface for customer storage
type CustomerRepository interface {
	List(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// CustomerService handles customer management
type CustomerService struct {
	repo CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// List returns one page of customers
func (s *CustomerService) List(ctx context.Context, params model.ListParams) (*model.Page[model.Customer], error) {
	params = params.Normalize(model.CustomerSortColumns)
	page, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return page, nil
}

// Get returns a single customer
func (s *CustomerService) Get(ctx context.Context, id int64) (*model.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get customer")
	}
	return customer, nil
}

// Create validates and stores a new customer
func (s *CustomerService) Create(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	in.Normalize()
	if err := newValidationError(in.Validate()); err != nil {
		return nil, err
	}

	customer := &model.Customer{}
	in.ApplyTo(customer)
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, s.mapError(err, "create customer")
	}

	slog.InfoContext(ctx, "customer created", slog.Int64("customer_id", customer.ID))
	return customer, nil
}

// Update replaces every editable field of an existing customer
func (s *CustomerService) Update(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error) {
	in.Normalize()
	if err := newValidationError(in.Validate()); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "get customer")
	}

	in.ApplyTo(customer)
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, s.mapError(err, "update customer")
	}
	return customer, nil
}

// Delete removes a customer
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, "delete customer")
	}
	slog.InfoContext(ctx, "customer deleted", slog.Int64("customer_id", id))
	return nil
}

func (s *CustomerService) mapError(err error, op string) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrCustomerNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
