package masterdata

import (
	"context"
	"fmt"
	"strings"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	CreateCustomer(ctx context.Context, input PartyInput) (Customer, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input PartyInput) (Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	CreateVendor(ctx context.Context, input PartyInput) (Vendor, error)
	GetVendor(ctx context.Context, id int64) (Vendor, error)
	ListVendors(ctx context.Context) ([]Vendor, error)
	UpdateVendor(ctx context.Context, id int64, input PartyInput) (Vendor, error)
	DeleteVendor(ctx context.Context, id int64) error
	CreateCategory(ctx context.Context, input CategoryInput) (Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, id int64, input CategoryInput) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Service validates and forwards master data operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func validParty(input PartyInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	return nil
}

func (s *Service) CreateCustomer(ctx context.Context, input PartyInput) (Customer, error) {
	if err := validParty(input); err != nil {
		return Customer{}, err
	}
	return s.repo.CreateCustomer(ctx, input)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, input PartyInput) (Customer, error) {
	if err := validParty(input); err != nil {
		return Customer{}, err
	}
	return s.repo.UpdateCustomer(ctx, id, input)
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) CreateVendor(ctx context.Context, input PartyInput) (Vendor, error) {
	if err := validParty(input); err != nil {
		return Vendor{}, err
	}
	return s.repo.CreateVendor(ctx, input)
}

func (s *Service) GetVendor(ctx context.Context, id int64) (Vendor, error) {
	return s.repo.GetVendor(ctx, id)
}

func (s *Service) ListVendors(ctx context.Context) ([]Vendor, error) {
	return s.repo.ListVendors(ctx)
}

func (s *Service) UpdateVendor(ctx context.Context, id int64, input PartyInput) (Vendor, error) {
	if err := validParty(input); err != nil {
		return Vendor{}, err
	}
	return s.repo.UpdateVendor(ctx, id, input)
}

func (s *Service) DeleteVendor(ctx context.Context, id int64) error {
	return s.repo.DeleteVendor(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Category{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	return s.repo.CreateCategory(ctx, input)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Category{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	return s.repo.UpdateCategory(ctx, id, input)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}
