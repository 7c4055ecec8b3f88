package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInput) (Expense, error)
	Get(ctx context.Context, id int64) (Expense, error)
	List(ctx context.Context, from, to time.Time) ([]Expense, error)
}

// Service validates and forwards expense operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Expense, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Expense{}, fmt.Errorf("%w: title required", ErrValidation)
	}
	if input.Amount <= 0 {
		return Expense{}, fmt.Errorf("%w: amount must be > 0", ErrValidation)
	}
	if input.IncurredOn.IsZero() {
		return Expense{}, fmt.Errorf("%w: incurred date required", ErrValidation)
	}
	return s.repo.Create(ctx, input)
}

func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, from, to time.Time) ([]Expense, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to before from", ErrValidation)
	}
	return s.repo.List(ctx, from, to)
}
