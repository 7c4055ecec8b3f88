package finishedgoods

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type product struct {
	category    string
	subCategory string
}

type memoryRepo struct {
	products map[int64]product
	goods    map[int64]*FinishedGood
	nextID   int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]product), goods: make(map[int64]*FinishedGood)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Upsert(ctx context.Context, input ProduceInput) (FinishedGood, error) {
	p, ok := r.products[input.FinishedProductID]
	if !ok {
		return FinishedGood{}, ErrNotFound
	}
	for _, g := range r.goods {
		if g.FinishedProductID == input.FinishedProductID && g.Size == input.Size {
			g.Quantity += input.Quantity
			g.Cost = input.Cost
			return *g, nil
		}
	}
	r.nextID++
	g := &FinishedGood{
		ID:                r.nextID,
		FinishedProductID: input.FinishedProductID,
		Size:              input.Size,
		Quantity:          input.Quantity,
		Cost:              input.Cost,
		Category:          p.category,
		SubCategory:       p.subCategory,
	}
	r.goods[g.ID] = g
	return *g, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (FinishedGood, error) {
	g, ok := r.goods[id]
	if !ok {
		return FinishedGood{}, ErrNotFound
	}
	return *g, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]FinishedGood, error) {
	out := []FinishedGood{}
	for _, g := range r.goods {
		out = append(out, *g)
	}
	return out, nil
}

func (tx *memoryTx) AdjustQuantity(ctx context.Context, id int64, delta float64) (FinishedGood, error) {
	g, ok := tx.repo.goods[id]
	if !ok {
		return FinishedGood{}, ErrNotFound
	}
	if g.Quantity+delta < 0 {
		return FinishedGood{}, ErrInsufficientStock
	}
	g.Quantity += delta
	return *g, nil
}

func TestProduceMergesQuantity(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = product{category: "menswear", subCategory: "polo"}
	svc := NewService(repo, nil)
	ctx := context.Background()

	first, err := svc.Produce(ctx, ProduceInput{FinishedProductID: 1, Size: "M", Quantity: 10, Cost: 4})
	require.NoError(t, err)
	require.InDelta(t, 10.0, first.Quantity, 0.0001)
	require.Equal(t, "menswear", first.Category)

	// Same (product, size): quantity merges, cost is last-write-wins.
	second, err := svc.Produce(ctx, ProduceInput{FinishedProductID: 1, Size: "M", Quantity: 5, Cost: 6})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.InDelta(t, 15.0, second.Quantity, 0.0001)
	require.InDelta(t, 6.0, second.Cost, 0.0001)

	// Different size: a separate row.
	other, err := svc.Produce(ctx, ProduceInput{FinishedProductID: 1, Size: "L", Quantity: 3, Cost: 4})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestProduceUnknownProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Produce(context.Background(), ProduceInput{FinishedProductID: 9, Size: "M", Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSellGuardsQuantity(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = product{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	g, err := svc.Produce(ctx, ProduceInput{FinishedProductID: 1, Size: "M", Quantity: 4, Cost: 2})
	require.NoError(t, err)

	sold, err := svc.Sell(ctx, g.ID, 3)
	require.NoError(t, err)
	require.InDelta(t, 1.0, sold.Quantity, 0.0001)

	_, err = svc.Sell(ctx, g.ID, 2)
	require.ErrorIs(t, err, ErrInsufficientStock)

	restocked, err := svc.Restock(ctx, g.ID, 2)
	require.NoError(t, err)
	require.InDelta(t, 3.0, restocked.Quantity, 0.0001)
}

func TestProduceValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Produce(ctx, ProduceInput{Size: "M", Quantity: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Produce(ctx, ProduceInput{FinishedProductID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Produce(ctx, ProduceInput{FinishedProductID: 1, Size: "M", Quantity: 0})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Sell(ctx, 1, 0)
	require.ErrorIs(t, err, ErrValidation)
}
