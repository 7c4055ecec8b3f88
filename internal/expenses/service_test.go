package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	expenses []Expense
	nextID   int64
}

func (r *memoryRepo) Create(ctx context.Context, input CreateInput) (Expense, error) {
	r.nextID++
	e := Expense{ID: r.nextID, Title: input.Title, Category: input.Category, Amount: input.Amount, IncurredOn: input.IncurredOn}
	r.expenses = append(r.expenses, e)
	return e, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Expense, error) {
	for _, e := range r.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return Expense{}, ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, from, to time.Time) ([]Expense, error) {
	out := []Expense{}
	for _, e := range r.expenses {
		if !e.IncurredOn.Before(from) && !e.IncurredOn.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestCreateAndListByRange(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreateInput{Title: "electricity", Amount: 120, IncurredOn: jan})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Title: "rent", Amount: 900, IncurredOn: mar})
	require.NoError(t, err)

	list, err := svc.List(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "electricity", list[0].Title)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Amount: 10, IncurredOn: time.Now()})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Title: "rent", Amount: 0, IncurredOn: time.Now()})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.List(ctx, time.Now(), time.Now().Add(-time.Hour))
	require.ErrorIs(t, err, ErrValidation)
}
